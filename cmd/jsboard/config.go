package main

import (
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/service"
)

// loadConfig resolves the configuration for target, applies the command's
// overrides and sets the logger level
func loadConfig(cmd *cobra.Command, target string, overrides *service.ConfigOverrides) (*config.Config, error) {
	if overrides == nil {
		overrides = &service.ConfigOverrides{}
	}
	configPath, _ := cmd.Flags().GetString("config")
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		overrides.LogLevel = level
	}
	if target == "" {
		target = "."
	}

	cfg, err := service.NewConfigurationLoader().Resolve(configPath, target, overrides)
	if err != nil {
		return nil, err
	}

	if level, err := charmlog.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
		logger.SetLevel(level)
	}
	return cfg, nil
}

// thresholdOverrides reads the threshold flags shared by analyze and serve
func thresholdOverrides(cmd *cobra.Command, o *service.ConfigOverrides) {
	if cmd.Flags().Changed("max-file-lines") {
		v, _ := cmd.Flags().GetInt("max-file-lines")
		o.MaxFileLines = &v
	}
	if cmd.Flags().Changed("max-function-lines") {
		v, _ := cmd.Flags().GetInt("max-function-lines")
		o.MaxFunctionLines = &v
	}
	if cmd.Flags().Changed("complexity") {
		v, _ := cmd.Flags().GetInt("complexity")
		o.Complexity = &v
	}
	if cmd.Flags().Changed("top") {
		v, _ := cmd.Flags().GetInt("top")
		o.TopN = &v
	}
	o.DisabledTools, _ = cmd.Flags().GetStringSlice("disable")
	o.ReportDir, _ = cmd.Flags().GetString("report-dir")
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-file-lines", config.DefaultMaxFileLines, "Maximum lines per file")
	cmd.Flags().Int("max-function-lines", config.DefaultMaxFunctionLines, "Maximum lines per function")
	cmd.Flags().Int("complexity", config.DefaultComplexity, "Cyclomatic complexity ceiling")
	cmd.Flags().Int("top", domain.DefaultTopN, "Number of largest files to rank")
	cmd.Flags().StringSlice("disable", nil, "Tools to skip (comma-separated): lint,deps,deadcode,linecount")
	cmd.Flags().String("report-dir", "", "Base directory for persisted reports (default: system temp dir)")
}

func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
