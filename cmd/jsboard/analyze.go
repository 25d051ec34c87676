package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/app"
	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/service"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Run every tool once and print the snapshot",
		Long: `Run eslint, dependency-cruiser, knip and the line counter over a project
once, merge their reports and print the resulting snapshot.

A tool that is missing, crashes or times out does not fail the run; its
sections stay empty and it is listed under Data Quality.

Examples:
  jsboard analyze
  jsboard analyze ./web
  jsboard analyze --format json . > snapshot.json
  jsboard analyze --disable deadcode --max-file-lines 300`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml (default from config)")
	cmd.Flags().Bool("json", false, "Output results as JSON (shorthand for --format json)")
	cmd.Flags().Bool("yaml", false, "Output results as YAML (shorthand for --format yaml)")
	cmd.Flags().Bool("no-progress", false, "Don't show progress bars")
	addAnalysisFlags(cmd)

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	overrides := &service.ConfigOverrides{OutputFormat: outputFormatFlag(cmd)}
	thresholdOverrides(cmd, overrides)

	cfg, err := loadConfig(cmd, target, overrides)
	if err != nil {
		return err
	}
	format := domain.OutputFormat(cfg.Output.Format)

	// Progress bars only accompany human-readable output
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	pm := service.NewProgressManager(format == domain.OutputFormatText && !noProgress)
	defer pm.Close()

	uc := app.NewAnalyzeUseCase(logger)
	result, err := uc.Execute(cmd.Context(), app.AnalyzeConfig{
		Root:         target,
		Config:       cfg,
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
		Progress:     pm,
	})
	if err != nil {
		return err
	}

	logger.Debug("analysis finished", "duration", result.Duration, "reports", result.ReportDir)
	if format == domain.OutputFormatText {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nAnalysis completed in %.1fs\n", result.Duration.Seconds())
	}
	return nil
}

// outputFormatFlag resolves --format and its --json/--yaml shorthands.
// An empty result keeps the configured format.
func outputFormatFlag(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetBool("json"); v {
		return string(domain.OutputFormatJSON)
	}
	if v, _ := cmd.Flags().GetBool("yaml"); v {
		return string(domain.OutputFormatYAML)
	}
	format, _ := cmd.Flags().GetString("format")
	return strings.ToLower(strings.TrimSpace(format))
}
