package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"

	"github.com/zarlcorp/zpersona/internal/cli"
	"github.com/zarlcorp/zpersona/internal/config"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("zpersona"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "zpersona: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		err := runCLI(ctx, cfg, os.Args[1:])
		_ = app.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "zpersona: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "zpersona: %v\n", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "zpersona: shutdown: %v\n", err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, cfg *config.Config, args []string) error {
	if args[0] == "version" {
		fmt.Printf("zpersona %s\n", version)
		return nil
	}

	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	a := cli.New(cfg, identity.New(), log)
	return a.Run(ctx, args)
}

// runTUI owns the terminal, so records go to a log file in the data dir.
func runTUI(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var w io.Writer = io.Discard
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "zpersona.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err == nil {
		defer f.Close()
		w = f
	}

	log, err := config.NewLogger(cfg.Log, w)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	m := tui.New(version, cfg, identity.New(), cli.IsFirstRun(cfg.DataDir))
	m.SetLogger(log)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	}

	return nil
}
