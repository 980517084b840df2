package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GarrickZ2/grove-sub001/internal/grove/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRoot()
	if cmd == nil || cmd.Use != "grove" {
		t.Fatalf("expected root command")
	}
}

func TestRootHasSubcommands(t *testing.T) {
	cmd := NewRoot()
	want := map[string]bool{"version": false, "layouts": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %s command", name)
		}
	}
}

func TestRootRunLaunchesTUI(t *testing.T) {
	origRun := runTUI
	var got config.Config
	runTUI = func(cfg config.Config) error {
		got = cfg
		return nil
	}
	defer func() { runTUI = origRun }()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cmd := NewRoot()
	cmd.SetArgs([]string{"--config", cfgPath, "--server", "http://localhost:9999"})
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Server.URL != "http://localhost:9999" {
		t.Fatalf("expected server flag override, got %q", got.Server.URL)
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRoot()
	buf := bytes.NewBuffer(nil)
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(buf)
	cmd.SetErr(bytes.NewBuffer(nil))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "grove") {
		t.Fatalf("unexpected version output %q", buf.String())
	}
}

func TestLayoutsCommandEmpty(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cmd := NewRoot()
	buf := bytes.NewBuffer(nil)
	cmd.SetArgs([]string{"layouts", "--config", cfgPath})
	cmd.SetOut(buf)
	cmd.SetErr(bytes.NewBuffer(nil))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "no saved layouts") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
