package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/constants"
)

// Default thresholds handed to the lint tool
const (
	// DefaultMaxFileLines is the max-lines limit per file
	DefaultMaxFileLines = 400

	// DefaultMaxFunctionLines is the max-lines-per-function limit
	DefaultMaxFunctionLines = 50

	// DefaultComplexity is the cyclomatic complexity ceiling
	DefaultComplexity = 10
)

// Watch and server defaults
const (
	DefaultDebounceMs = 750
	MinDebounceMs     = 100
	MaxDebounceMs     = 10000

	DefaultHost = "127.0.0.1"
	DefaultPort = 3030
)

// Default per-tool timeouts in seconds
const (
	DefaultLintTimeoutSeconds      = 120
	DefaultDepsTimeoutSeconds      = 120
	DefaultDeadCodeTimeoutSeconds  = 180
	DefaultLineCountTimeoutSeconds = 60
)

// Config represents the main configuration structure
type Config struct {
	// Analysis holds the file-set configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Thresholds holds the limits handed to the lint tool
	Thresholds ThresholdsConfig `json:"thresholds" mapstructure:"thresholds" yaml:"thresholds"`

	// Watch holds file watcher configuration
	Watch WatchConfig `json:"watch" mapstructure:"watch" yaml:"watch"`

	// Server holds the dashboard server configuration
	Server ServerConfig `json:"server" mapstructure:"server" yaml:"server"`

	// Tools holds per-tool invocation settings
	Tools ToolsConfig `json:"tools" mapstructure:"tools" yaml:"tools"`

	// Report holds snapshot and report storage settings
	Report ReportConfig `json:"report" mapstructure:"report" yaml:"report"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Performance holds concurrency settings
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// Log holds logging settings
	Log LogConfig `json:"log" mapstructure:"log" yaml:"log"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// Root is the directory to analyze; empty means the target argument or cwd
	Root string `json:"root" mapstructure:"root" yaml:"root"`

	// IncludePatterns specifies file patterns to include (gitignore syntax)
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude (gitignore syntax)
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// UseGitignore honors the root .gitignore
	UseGitignore bool `json:"use_gitignore" mapstructure:"use_gitignore" yaml:"use_gitignore"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// ThresholdsConfig holds the three configured limits
type ThresholdsConfig struct {
	MaxFileLines     int `json:"max_file_lines" mapstructure:"max_file_lines" yaml:"max_file_lines"`
	MaxFunctionLines int `json:"max_function_lines" mapstructure:"max_function_lines" yaml:"max_function_lines"`
	Complexity       int `json:"complexity" mapstructure:"complexity" yaml:"complexity"`
}

// ToDomain converts to the adapter-facing thresholds
func (t ThresholdsConfig) ToDomain() domain.Thresholds {
	return domain.Thresholds{
		MaxFileLines:     t.MaxFileLines,
		MaxFunctionLines: t.MaxFunctionLines,
		Complexity:       t.Complexity,
	}
}

// WatchConfig holds file watcher configuration
type WatchConfig struct {
	// Enabled turns on re-analysis on file changes in serve mode
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// DebounceMs is the quiet window after the last change event
	DebounceMs int `json:"debounce_ms" mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// Debounce returns the debounce window
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// ServerConfig holds the dashboard server configuration
type ServerConfig struct {
	Host        string `json:"host" mapstructure:"host" yaml:"host"`
	Port        int    `json:"port" mapstructure:"port" yaml:"port"`
	OpenBrowser bool   `json:"open_browser" mapstructure:"open_browser" yaml:"open_browser"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ToolConfig holds invocation settings for one external tool
type ToolConfig struct {
	// Enabled controls whether the tool runs at all
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Command is the executable; Args precede the adapter's own flags
	Command string   `json:"command" mapstructure:"command" yaml:"command"`
	Args    []string `json:"args" mapstructure:"args" yaml:"args"`

	// TimeoutSeconds bounds one invocation
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the invocation timeout
func (t ToolConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// ToolsConfig holds per-tool settings
type ToolsConfig struct {
	Lint      ToolConfig `json:"lint" mapstructure:"lint" yaml:"lint"`
	Deps      ToolConfig `json:"deps" mapstructure:"deps" yaml:"deps"`
	DeadCode  ToolConfig `json:"deadcode" mapstructure:"deadcode" yaml:"deadcode"`
	LineCount ToolConfig `json:"linecount" mapstructure:"linecount" yaml:"linecount"`
}

// Get returns the settings for a tool kind
func (t ToolsConfig) Get(kind domain.ToolKind) ToolConfig {
	switch kind {
	case domain.ToolKindLint:
		return t.Lint
	case domain.ToolKindDependencyGraph:
		return t.Deps
	case domain.ToolKindDeadCode:
		return t.DeadCode
	default:
		return t.LineCount
	}
}

// ReportConfig holds snapshot and report storage settings
type ReportConfig struct {
	// TopN caps the largest-files ranking
	TopN int `json:"top_n" mapstructure:"top_n" yaml:"top_n"`

	// Directory is the base directory for persisted reports (empty = system temp dir)
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// PerformanceConfig holds concurrency settings
type PerformanceConfig struct {
	// MaxGoroutines bounds concurrent tool runs (0 = one per tool)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole analysis cycle
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LogConfig holds logging settings
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			IncludePatterns: []string{
				"**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx",
				"**/*.mjs", "**/*.cjs", "**/*.mts", "**/*.cts",
			},
			ExcludePatterns: []string{
				// Package managers and dependencies
				"node_modules",
				"vendor",
				// Build outputs
				"dist",
				"build",
				"out",
				".output",
				// Framework-specific
				".next",
				".nuxt",
				".vercel",
				// Cache directories
				".cache",
				".turbo",
				"coverage",
				// Minified and bundled files
				"*.min.js",
				"*.min.mjs",
				"*.min.cjs",
				"*.bundle.js",
				// Declarations and source maps
				"*.d.ts",
				"*.map",
			},
			UseGitignore:   true,
			FollowSymlinks: false,
		},
		Thresholds: ThresholdsConfig{
			MaxFileLines:     DefaultMaxFileLines,
			MaxFunctionLines: DefaultMaxFunctionLines,
			Complexity:       DefaultComplexity,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: DefaultDebounceMs,
		},
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			OpenBrowser: true,
		},
		Tools: ToolsConfig{
			Lint: ToolConfig{
				Enabled:        true,
				Command:        "npx",
				Args:           []string{"--no-install", "eslint"},
				TimeoutSeconds: DefaultLintTimeoutSeconds,
			},
			Deps: ToolConfig{
				Enabled:        true,
				Command:        "npx",
				Args:           []string{"--no-install", "depcruise"},
				TimeoutSeconds: DefaultDepsTimeoutSeconds,
			},
			DeadCode: ToolConfig{
				Enabled:        true,
				Command:        "npx",
				Args:           []string{"--no-install", "knip"},
				TimeoutSeconds: DefaultDeadCodeTimeoutSeconds,
			},
			LineCount: ToolConfig{
				Enabled:        true,
				TimeoutSeconds: DefaultLineCountTimeoutSeconds,
			},
		},
		Report: ReportConfig{
			TopN: domain.DefaultTopN,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  4,
			TimeoutSeconds: 600,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// discoverConfigFile finds the appropriate config file path
func discoverConfigFile(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// loadConfigFromFile reads and parses a configuration file, then applies
// JSBOARD_* environment overrides. An empty path yields defaults plus
// environment overrides.
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()

	registerDefaults(v, config)
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// registerDefaults makes scalar keys known to viper so environment
// variables can override them without a config file
func registerDefaults(v *viper.Viper, c *Config) {
	defaults := map[string]interface{}{
		"analysis.root":                 c.Analysis.Root,
		"analysis.use_gitignore":        c.Analysis.UseGitignore,
		"analysis.follow_symlinks":      c.Analysis.FollowSymlinks,
		"thresholds.max_file_lines":     c.Thresholds.MaxFileLines,
		"thresholds.max_function_lines": c.Thresholds.MaxFunctionLines,
		"thresholds.complexity":         c.Thresholds.Complexity,
		"watch.enabled":                 c.Watch.Enabled,
		"watch.debounce_ms":             c.Watch.DebounceMs,
		"server.host":                   c.Server.Host,
		"server.port":                   c.Server.Port,
		"server.open_browser":           c.Server.OpenBrowser,
		"report.top_n":                  c.Report.TopN,
		"report.directory":              c.Report.Directory,
		"output.format":                 c.Output.Format,
		"performance.max_goroutines":    c.Performance.MaxGoroutines,
		"performance.timeout_seconds":   c.Performance.TimeoutSeconds,
		"log.level":                     c.Log.Level,
	}
	for _, kind := range domain.AllToolKinds() {
		tool := c.Tools.Get(kind)
		prefix := "tools." + string(kind) + "."
		defaults[prefix+"enabled"] = tool.Enabled
		defaults[prefix+"command"] = tool.Command
		defaults[prefix+"timeout_seconds"] = tool.TimeoutSeconds
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadConfigWithTarget loads configuration with target path context
// Orchestrates discovery and loading but delegates specific concerns
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	// If no config path specified, discover one
	if configPath == "" {
		configPath = discoverConfigFile(targetPath)
	}

	// Load the configuration from the determined path
	return loadConfigFromFile(configPath)
}

// ConfigFileCandidates lists the file names searched in each directory
func ConfigFileCandidates() []string {
	return []string{
		"jsboard.yaml",
		"jsboard.yml",
		".jsboard.yaml",
		".jsboard.yml",
		"jsboard.json",
		".jsboard.json",
		constants.ConfigFileName,
	}
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations
// targetPath is the path being analyzed
func findDefaultConfig(targetPath string) string {
	candidates := ConfigFileCandidates()

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			// Handle Windows edge cases: volume roots (C:\), UNC paths (\\server\share)
			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	// Check ~/.config/jsboard/ (XDG default)
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
	}

	// Check JSBOARD_CONFIG environment variable as fallback
	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Thresholds.MaxFileLines < 1 {
		return fmt.Errorf("thresholds.max_file_lines must be >= 1, got %d", c.Thresholds.MaxFileLines)
	}
	if c.Thresholds.MaxFunctionLines < 1 {
		return fmt.Errorf("thresholds.max_function_lines must be >= 1, got %d", c.Thresholds.MaxFunctionLines)
	}
	if c.Thresholds.Complexity < 1 {
		return fmt.Errorf("thresholds.complexity must be >= 1, got %d", c.Thresholds.Complexity)
	}

	if c.Watch.DebounceMs < MinDebounceMs || c.Watch.DebounceMs > MaxDebounceMs {
		return fmt.Errorf("watch.debounce_ms must be between %d and %d, got %d",
			MinDebounceMs, MaxDebounceMs, c.Watch.DebounceMs)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	for _, kind := range domain.AllToolKinds() {
		tool := c.Tools.Get(kind)
		if !tool.Enabled {
			continue
		}
		if tool.TimeoutSeconds < 1 {
			return fmt.Errorf("tools.%s.timeout_seconds must be >= 1, got %d", kind, tool.TimeoutSeconds)
		}
		if kind != domain.ToolKindLineCount && tool.Command == "" {
			return fmt.Errorf("tools.%s.command cannot be empty", kind)
		}
	}

	if c.Report.TopN < 1 {
		return fmt.Errorf("report.top_n must be >= 1, got %d", c.Report.TopN)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	// Validate include patterns (at least one must be specified)
	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	return nil
}
