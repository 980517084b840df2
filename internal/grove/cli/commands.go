package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/GarrickZ2/grove-sub001/internal/grove/layout"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the grove version",
		Run: func(cmd *cobra.Command, args []string) {
			version := "dev"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}
			fmt.Fprintln(cmd.OutOrStdout(), "grove", version)
		},
	}
}

func layoutsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List saved workspace layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			configs, err := layout.LoadConfigs(cfg.LayoutsPath())
			if err != nil {
				return fmt.Errorf("load layouts: %w", err)
			}
			if len(configs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved layouts")
				return nil
			}
			for _, c := range configs {
				tree, err := c.Build()
				if err != nil {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  (%d panes)\n", c.Name, tree.PaneCount())
			}
			return nil
		},
	}
}
