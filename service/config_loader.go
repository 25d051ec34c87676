package service

import (
	"strings"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
)

// ConfigOverrides carries command-line values that take precedence over the
// configuration file. Nil pointers and empty strings leave the file value.
type ConfigOverrides struct {
	OutputFormat string
	LogLevel     string
	ReportDir    string

	Host        string
	Port        *int
	OpenBrowser *bool
	Watch       *bool
	DebounceMs  *int

	TopN             *int
	MaxFileLines     *int
	MaxFunctionLines *int
	Complexity       *int

	// DisabledTools turns off the named tool kinds
	DisabledTools []string
}

// ConfigurationLoaderImpl resolves the effective configuration of a run
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from path, or discovers one starting at
// targetPath when path is empty
func (c *ConfigurationLoaderImpl) LoadConfig(path, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the discovered configuration for targetPath and
// falls back to built-in defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *config.Config {
	cfg, err := config.LoadConfigWithTarget("", targetPath)
	if err == nil {
		return cfg
	}
	return config.DefaultConfig()
}

// MergeConfig applies overrides on a copy of base
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, override *ConfigOverrides) (*config.Config, error) {
	merged := *base
	if override == nil {
		return &merged, nil
	}

	if override.OutputFormat != "" {
		merged.Output.Format = strings.ToLower(override.OutputFormat)
	}
	if override.LogLevel != "" {
		merged.Log.Level = strings.ToLower(override.LogLevel)
	}
	if override.ReportDir != "" {
		merged.Report.Directory = override.ReportDir
	}

	if override.Host != "" {
		merged.Server.Host = override.Host
	}
	if override.Port != nil {
		merged.Server.Port = *override.Port
	}
	if override.OpenBrowser != nil {
		merged.Server.OpenBrowser = *override.OpenBrowser
	}
	if override.Watch != nil {
		merged.Watch.Enabled = *override.Watch
	}
	if override.DebounceMs != nil {
		merged.Watch.DebounceMs = *override.DebounceMs
	}

	if override.TopN != nil {
		merged.Report.TopN = *override.TopN
	}
	if override.MaxFileLines != nil {
		merged.Thresholds.MaxFileLines = *override.MaxFileLines
	}
	if override.MaxFunctionLines != nil {
		merged.Thresholds.MaxFunctionLines = *override.MaxFunctionLines
	}
	if override.Complexity != nil {
		merged.Thresholds.Complexity = *override.Complexity
	}

	for _, name := range override.DisabledTools {
		kind, err := domain.ParseToolKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		switch kind {
		case domain.ToolKindLint:
			merged.Tools.Lint.Enabled = false
		case domain.ToolKindDependencyGraph:
			merged.Tools.Deps.Enabled = false
		case domain.ToolKindDeadCode:
			merged.Tools.DeadCode.Enabled = false
		case domain.ToolKindLineCount:
			merged.Tools.LineCount.Enabled = false
		}
	}

	return &merged, nil
}

// ValidateConfig validates the merged configuration
func (c *ConfigurationLoaderImpl) ValidateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewConfigError("invalid configuration", err)
	}
	return nil
}

// Resolve loads, merges and validates in one step
func (c *ConfigurationLoaderImpl) Resolve(path, targetPath string, override *ConfigOverrides) (*config.Config, error) {
	base, err := c.LoadConfig(path, targetPath)
	if err != nil {
		return nil, err
	}
	merged, err := c.MergeConfig(base, override)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateConfig(merged); err != nil {
		return nil, err
	}
	return merged, nil
}
