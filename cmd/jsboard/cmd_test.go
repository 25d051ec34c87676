package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/testutil"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"analyze", "serve", "show", "init", "version"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("Missing subcommand %s: %v", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Missing persistent --config flag")
	}
}

func TestAnalyzeCmd_FlagsExist(t *testing.T) {
	cmd := analyzeCmd()

	expectedFlags := []string{
		"format", "json", "yaml", "no-progress", "max-file-lines",
		"max-function-lines", "complexity", "top", "disable", "report-dir",
	}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
	if cmd.Flags().ShorthandLookup("f") == nil {
		t.Error("Missing short flag -f for --format")
	}
}

func TestServeCmd_FlagsExist(t *testing.T) {
	cmd := serveCmd()

	for _, flagName := range []string{"host", "port", "no-open", "no-watch", "debounce", "disable"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
	if cmd.Flags().ShorthandLookup("p") == nil {
		t.Error("Missing short flag -p for --port")
	}
}

func TestOutputFormatFlag(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--format", "YAML"}, "yaml"},
		{[]string{"--json"}, "json"},
		{[]string{"--yaml"}, "yaml"},
		{[]string{"--json", "--format", "text"}, "json"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd := analyzeCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			if got := outputFormatFlag(cmd); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not ready", domain.ErrNotReady, 3},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrNotFound), 3},
		{"config error", domain.NewConfigError("bad", nil), 2},
		{"unsupported format", domain.NewUnsupportedFormatError("html"), 2},
		{"storage error", domain.NewStorageError("disk full", nil), 1},
		{"plain error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("Expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "jsboard version ") {
		t.Errorf("Unexpected version output %q", out)
	}

	out, err = runRoot(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("Expected JSON, got %q: %v", out, err)
	}
	if info["version"] == "" || info["go_version"] == nil {
		t.Errorf("Unexpected version JSON %v", info)
	}
}

func TestAnalyzeAndShow_LineCountOnly(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/app.ts":  "export function greet(name: string) {\n  return `hi ${name}`\n}\n",
		"src/util.js": "module.exports = 1\n",
	})
	reportDir := t.TempDir()

	_, err := runRoot(t, "show", root, "--report-dir", reportDir)
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("Expected ErrNotReady before analyze, got %v", err)
	}

	out, err := runRoot(t, "analyze", root,
		"--json", "--no-progress",
		"--disable", "lint,deps,deadcode",
		"--report-dir", reportDir)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("Output is not a JSON snapshot: %v\n%s", err, out)
	}
	if len(snapshot.Files) != 2 {
		t.Errorf("Expected 2 counted files, got %d", len(snapshot.Files))
	}
	if len(snapshot.DataQuality.FailedTools) != 3 {
		t.Errorf("Expected 3 disabled tools, got %v", snapshot.DataQuality.FailedTools)
	}

	out, err = runRoot(t, "show", root, "--report-dir", reportDir, "--file", "app.ts", "--format", "text")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, "=== src/app.ts ===") || !strings.Contains(out, "Lines: 3") {
		t.Errorf("Unexpected detail output:\n%s", out)
	}
}

func TestAnalyzeCmd_InvalidFlags(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{"src/app.ts": ""})

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"--format", "html"}},
		{"unknown tool", []string{"--disable", "prettier"}},
		{"zero threshold", []string{"--max-file-lines", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"analyze", root, "--report-dir", t.TempDir()}, tt.args...)
			if _, err := runRoot(t, args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
