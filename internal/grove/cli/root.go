// Package cli wires the grove TUI and its supporting services.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/GarrickZ2/grove-sub001/internal/grove/api"
	"github.com/GarrickZ2/grove-sub001/internal/grove/config"
	"github.com/GarrickZ2/grove-sub001/internal/grove/hooks"
	"github.com/GarrickZ2/grove-sub001/internal/grove/layout"
	"github.com/GarrickZ2/grove-sub001/internal/grove/ordering"
	"github.com/GarrickZ2/grove-sub001/internal/grove/tui"
)

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the grove command tree.
func NewRoot() *cobra.Command {
	var cfgPath string
	var serverURL string

	root := &cobra.Command{
		Use:          "grove",
		Short:        "Terminal dashboard for git worktree tasks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}
			return runTUI(cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	root.Flags().StringVar(&serverURL, "server", "", "grove server URL")
	root.AddCommand(versionCmd(), layoutsCmd(&cfgPath))
	return root
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

var runTUI = func(cfg config.Config) error {
	// The alt screen owns stdout, so only errors get logged.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	client := api.NewClient(cfg.Server.URL)
	if cfg.TUI.DefaultTarget != "" {
		client.WithDefaultTarget(cfg.TUI.DefaultTarget)
	}

	order, err := ordering.Load(cfg.OrderingPath())
	if err != nil {
		slog.Error("failed to load task order", "error", err)
		order = ordering.NewStore()
	}

	var lt *layout.Tree
	if configs, err := layout.LoadConfigs(cfg.LayoutsPath()); err == nil && len(configs) > 0 {
		if built, err := configs[0].Build(); err == nil {
			lt = built
		}
	}

	poller := hooks.NewPoller(client, time.Duration(cfg.Hooks.PollIntervalSeconds)*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	m := tui.New(client, poller, order, lt).
		WithRefreshInterval(time.Duration(cfg.TUI.RefreshIntervalSeconds) * time.Second)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if err := order.Save(cfg.OrderingPath()); err != nil {
		slog.Error("failed to save task order", "error", err)
	}
	return nil
}
