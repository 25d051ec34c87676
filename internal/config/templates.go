package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the type of JavaScript/TypeScript project
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeVue         ProjectType = "vue"
	ProjectTypeNodeBackend ProjectType = "node"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset is the analysis scope suggested for a kind of project.
type ProjectPreset struct {
	Type            ProjectType
	Label           string
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset is a named set of thresholds.
type StrictnessPreset struct {
	Level            Strictness
	Label            string
	MaxFileLines     int
	MaxFunctionLines int
	Complexity       int
}

// Summary describes the thresholds in one line.
func (p StrictnessPreset) Summary() string {
	return strconv.Itoa(p.MaxFileLines) + " lines per file, " +
		strconv.Itoa(p.MaxFunctionLines) + " per function, complexity " +
		strconv.Itoa(p.Complexity)
}

var (
	jsSources      = []string{"**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx"}
	buildArtifacts = []string{"node_modules", "dist", "build", "*.min.js", "*.bundle.js"}
)

func withExtra(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// ProjectPresets lists the project presets in prompt order.
func ProjectPresets() []ProjectPreset {
	return []ProjectPreset{
		{ProjectTypeGeneric, "Generic JavaScript/TypeScript", jsSources, buildArtifacts},
		{ProjectTypeReact, "React/Next.js", jsSources, withExtra(buildArtifacts, ".next", "coverage")},
		{ProjectTypeVue, "Vue/Nuxt", withExtra(jsSources, "**/*.vue"), withExtra(buildArtifacts, ".nuxt", "coverage")},
		{ProjectTypeNodeBackend, "Node.js backend",
			[]string{"**/*.js", "**/*.ts", "**/*.mjs", "**/*.cjs"},
			withExtra(buildArtifacts, "test", "tests", "__tests__")},
	}
}

// StrictnessPresets lists the threshold presets in prompt order, the
// recommended one first.
func StrictnessPresets() []StrictnessPreset {
	return []StrictnessPreset{
		{StrictnessStandard, "Standard (recommended)", DefaultMaxFileLines, DefaultMaxFunctionLines, DefaultComplexity},
		{StrictnessRelaxed, "Relaxed", 600, 80, 15},
		{StrictnessStrict, "Strict", 250, 30, 7},
	}
}

// LookupProject finds a project preset by type.
func LookupProject(t ProjectType) (ProjectPreset, bool) {
	for _, p := range ProjectPresets() {
		if p.Type == t {
			return p, true
		}
	}
	return ProjectPreset{}, false
}

// LookupStrictness finds a threshold preset by level.
func LookupStrictness(s Strictness) (StrictnessPreset, bool) {
	for _, p := range StrictnessPresets() {
		if p.Level == s {
			return p, true
		}
	}
	return StrictnessPreset{}, false
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := LookupProject(projectType)
	if !ok {
		preset, _ = LookupProject(ProjectTypeGeneric)
	}
	strict, ok := LookupStrictness(strictness)
	if !ok {
		strict, _ = LookupStrictness(StrictnessStandard)
	}

	return `# jsboard configuration
# Documentation: https://github.com/ludo-technologies/jsboard

# =============================================================================
# ANALYSIS SCOPE
# =============================================================================
# Controls which files are handed to the tools. Patterns use .gitignore syntax.
analysis:
  include_patterns:
` + formatYAMLList(preset.IncludePatterns) + `
  exclude_patterns:
` + formatYAMLList(preset.ExcludePatterns) + `
  # Also honor the project's .gitignore
  use_gitignore: true

# =============================================================================
# THRESHOLDS
# =============================================================================
# Passed to the linter as max-lines, max-lines-per-function and complexity
thresholds:
  max_file_lines: ` + strconv.Itoa(strict.MaxFileLines) + `
  max_function_lines: ` + strconv.Itoa(strict.MaxFunctionLines) + `
  complexity: ` + strconv.Itoa(strict.Complexity) + `

# =============================================================================
# WATCH MODE
# =============================================================================
watch:
  enabled: true
  # Quiet window after the last change before re-running the tools
  debounce_ms: ` + strconv.Itoa(DefaultDebounceMs) + `

# =============================================================================
# DASHBOARD SERVER
# =============================================================================
server:
  host: ` + DefaultHost + `
  port: ` + strconv.Itoa(DefaultPort) + `
  open_browser: true

# =============================================================================
# TOOLS
# =============================================================================
# Each tool can be disabled or pointed at a different executable.
# A tool that fails or times out only empties its own part of the report.
tools:
  lint:
    enabled: true
    command: npx
    args: ["--no-install", "eslint"]
    timeout_seconds: ` + strconv.Itoa(DefaultLintTimeoutSeconds) + `
  deps:
    enabled: true
    command: npx
    args: ["--no-install", "depcruise"]
    timeout_seconds: ` + strconv.Itoa(DefaultDepsTimeoutSeconds) + `
  deadcode:
    enabled: true
    command: npx
    args: ["--no-install", "knip"]
    timeout_seconds: ` + strconv.Itoa(DefaultDeadCodeTimeoutSeconds) + `
  linecount:
    enabled: true
    timeout_seconds: ` + strconv.Itoa(DefaultLineCountTimeoutSeconds) + `

# =============================================================================
# REPORT
# =============================================================================
report:
  # Number of files in the largest-files ranking
  top_n: 50
  # Where tool reports are stored (empty = system temp dir)
  directory: ""
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# jsboard configuration (minimal)
# See full options: https://github.com/ludo-technologies/jsboard

analysis:
  include_patterns: ["**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx"]
  exclude_patterns: ["node_modules", "dist"]

thresholds:
  max_file_lines: ` + strconv.Itoa(DefaultMaxFileLines) + `
  max_function_lines: ` + strconv.Itoa(DefaultMaxFunctionLines) + `
  complexity: ` + strconv.Itoa(DefaultComplexity) + `
`
}

// formatYAMLList formats a string slice as an indented YAML block list
func formatYAMLList(items []string) string {
	if len(items) == 0 {
		return "    []"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = `    - "` + item + `"`
	}
	return strings.Join(lines, "\n")
}
