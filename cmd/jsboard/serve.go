package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/app"
	"github.com/ludo-technologies/jsboard/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Watch a project and serve its latest snapshot",
		Long: `Analyze a project, then keep the snapshot fresh while serving it over HTTP.

File changes are debounced; a burst of saves produces one re-analysis.
Changes arriving while an analysis runs trigger exactly one follow-up run.

Endpoints:
  GET /api/report           latest snapshot (503 until the first run completes)
  GET /api/file?path=<p>    one file's metrics and issues (404 if untracked)
  GET /api/status           refresh loop state
  GET /healthz              liveness
  GET /ws                   websocket push of every new snapshot

Examples:
  jsboard serve
  jsboard serve ./web --port 4000 --no-open`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().String("host", "", "Interface to listen on (default from config)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().Bool("no-open", false, "Don't open the dashboard in a browser")
	cmd.Flags().Bool("no-watch", false, "Analyze once and serve without watching for changes")
	cmd.Flags().Int("debounce", 0, "Quiet window in milliseconds after the last change (default from config)")
	addAnalysisFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	overrides := &service.ConfigOverrides{}
	thresholdOverrides(cmd, overrides)
	overrides.Host, _ = cmd.Flags().GetString("host")
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		overrides.Port = &port
	}
	if noOpen, _ := cmd.Flags().GetBool("no-open"); noOpen {
		open := false
		overrides.OpenBrowser = &open
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		watch := false
		overrides.Watch = &watch
	}
	if cmd.Flags().Changed("debounce") {
		ms, _ := cmd.Flags().GetInt("debounce")
		overrides.DebounceMs = &ms
	}

	cfg, err := loadConfig(cmd, target, overrides)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// A second Ctrl+C while the last cycle finishes exits immediately
		<-ctx.Done()
		stop()
	}()

	uc := app.NewServeUseCase(nil, nil, logger)
	return uc.Execute(ctx, app.ServeConfig{
		Root:   target,
		Config: cfg,
		Ready: func(url string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard API listening on %s (Ctrl+C to stop)\n", url)
		},
	})
}
