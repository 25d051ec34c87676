package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/app"
	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/service"
)

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the last persisted snapshot without running tools",
		Long: `Print the snapshot saved by the last analyze or serve run for a project,
or the detail of one file in it.

The file may be given as an absolute path, relative to the project root, or
as a unique path suffix.

Examples:
  jsboard show
  jsboard show --file src/app.ts
  jsboard show ./web --file Button.tsx --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}

	cmd.Flags().String("file", "", "Show one file's metrics and issues")
	cmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml (default from config)")
	cmd.Flags().Bool("json", false, "Output results as JSON (shorthand for --format json)")
	cmd.Flags().Bool("yaml", false, "Output results as YAML (shorthand for --format yaml)")
	cmd.Flags().String("report-dir", "", "Base directory for persisted reports (default: system temp dir)")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	target := targetArg(args)
	overrides := &service.ConfigOverrides{OutputFormat: outputFormatFlag(cmd)}
	overrides.ReportDir, _ = cmd.Flags().GetString("report-dir")

	cfg, err := loadConfig(cmd, target, overrides)
	if err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("file")

	return app.NewShowUseCase().Execute(app.ShowConfig{
		Root:         target,
		Config:       cfg,
		File:         file,
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		OutputWriter: cmd.OutOrStdout(),
	})
}
