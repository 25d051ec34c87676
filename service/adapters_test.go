package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/testutil"
)

type runCall struct {
	dir  string
	name string
	args []string
}

// fakeRunner records invocations and answers with a handler. --version
// probes are answered automatically.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runCall
	version string
	handler func(call runCall) (*CommandResult, error)
}

func (r *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (*CommandResult, error) {
	call := runCall{dir: dir, name: name, args: args}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	if len(args) > 0 && args[len(args)-1] == "--version" {
		return &CommandResult{Stdout: []byte(r.version + "\n")}, nil
	}
	if r.handler == nil {
		return &CommandResult{}, nil
	}
	return r.handler(call)
}

// analysisCall returns the first recorded call that is not a version probe
func (r *fakeRunner) analysisCall(t *testing.T) runCall {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if len(c.args) == 0 || c.args[len(c.args)-1] != "--version" {
			return c
		}
	}
	t.Fatal("no analysis call recorded")
	return runCall{}
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func adapterInput(t *testing.T, files ...string) domain.AdapterInput {
	t.Helper()
	root := t.TempDir()
	var abs []string
	for _, f := range files {
		abs = append(abs, filepath.Join(root, filepath.FromSlash(f)))
	}
	return domain.AdapterInput{
		Root:       root,
		Files:      abs,
		Thresholds: config.DefaultConfig().Thresholds.ToDomain(),
		WorkDir:    t.TempDir(),
	}
}

func TestLintAdapter_Success(t *testing.T) {
	runner := &fakeRunner{version: "v9.12.0"}
	runner.handler = func(call runCall) (*CommandResult, error) {
		out := flagValue(call.args, "--output-file")
		payload := `[{"filePath":"/abs/src/app.ts","messages":[{"ruleId":"complexity","severity":1,"message":"Function 'run' has a complexity of 14. Maximum allowed is 10.","line":3,"column":1}],"errorCount":0,"warningCount":1}]`
		if err := os.WriteFile(out, []byte(payload), 0o644); err != nil {
			return nil, err
		}
		return &CommandResult{ExitCode: 1}, nil
	}
	adapter := NewLintAdapter(config.DefaultConfig().Tools.Lint, runner, nil)
	in := adapterInput(t, "src/app.ts")

	report := adapter.Run(context.Background(), in)

	if !report.Usable() {
		t.Fatalf("expected usable report, got failure %q", report.FailureReason)
	}
	if report.Version != "v9.12.0" {
		t.Errorf("unexpected version %q", report.Version)
	}
	if len(report.Lint.Files) != 1 || report.Lint.Files[0].Messages[0].RuleID != "complexity" {
		t.Errorf("unexpected lint payload %+v", report.Lint)
	}

	call := runner.analysisCall(t)
	if call.name != "npx" || call.dir != in.Root {
		t.Errorf("unexpected invocation %s in %s", call.name, call.dir)
	}
	joined := strings.Join(call.args, " ")
	for _, want := range []string{"eslint", "--format json", "complexity: [warn, 10]", "max: 400", "max: 50", "src/app.ts"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected args to contain %q, got %s", want, joined)
		}
	}
}

func TestLintAdapter_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(call runCall) (*CommandResult, error)
		reason  string
	}{
		{
			name: "crash exit code",
			handler: func(call runCall) (*CommandResult, error) {
				return &CommandResult{ExitCode: 2, Stderr: []byte("\nOops! Something went wrong!\n")}, nil
			},
			reason: "exit code 2: Oops! Something went wrong!",
		},
		{
			name: "start failure",
			handler: func(call runCall) (*CommandResult, error) {
				return &CommandResult{}, errors.New("failed to run npx: not found")
			},
			reason: "not found",
		},
		{
			name: "malformed output",
			handler: func(call runCall) (*CommandResult, error) {
				return &CommandResult{Stdout: []byte(`{"not":"an array"}`)}, nil
			},
			reason: "",
		},
		{
			name: "no output",
			handler: func(call runCall) (*CommandResult, error) {
				return &CommandResult{}, nil
			},
			reason: "no report produced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{handler: tt.handler}
			adapter := NewLintAdapter(config.DefaultConfig().Tools.Lint, runner, nil)

			report := adapter.Run(context.Background(), adapterInput(t, "a.js"))

			if !report.Failed || report.Usable() {
				t.Fatal("expected failed report")
			}
			if report.Kind != domain.ToolKindLint {
				t.Errorf("unexpected kind %s", report.Kind)
			}
			if !strings.Contains(report.FailureReason, tt.reason) {
				t.Errorf("reason %q should contain %q", report.FailureReason, tt.reason)
			}
		})
	}
}

func TestLintAdapter_DisabledAndEmpty(t *testing.T) {
	runner := &fakeRunner{}
	cfg := config.DefaultConfig().Tools.Lint
	cfg.Enabled = false

	report := NewLintAdapter(cfg, runner, nil).Run(context.Background(), adapterInput(t, "a.js"))
	if !report.Failed || report.FailureReason != DisabledReason {
		t.Errorf("expected disabled report, got %+v", report)
	}

	report = NewLintAdapter(config.DefaultConfig().Tools.Lint, runner, nil).Run(context.Background(), adapterInput(t))
	if !report.Usable() || len(report.Lint.Files) != 0 {
		t.Errorf("expected empty usable report, got %+v", report)
	}
}

func TestDepsAdapter_Success(t *testing.T) {
	runner := &fakeRunner{version: "16.3.0"}
	runner.handler = func(call runCall) (*CommandResult, error) {
		payload := `{"modules":[{"source":"src/a.ts","dependencies":[{"resolved":"src/b.ts","circular":true}]}],` +
			`"summary":{"violations":[{"from":"src/a.ts","to":"src/b.ts","rule":{"name":"no-circular","severity":"warn"},"cycle":["src/b.ts","src/a.ts"]}],"totalCruised":2}}`
		return &CommandResult{Stdout: []byte("cruising...\n" + payload)}, nil
	}
	adapter := NewDepsAdapter(config.DefaultConfig().Tools.Deps, runner, nil)
	in := adapterInput(t, "src/a.ts", "src/b.ts")
	if err := os.WriteFile(filepath.Join(in.Root, "tsconfig.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	report := adapter.Run(context.Background(), in)

	if !report.Usable() {
		t.Fatalf("expected usable report, got failure %q", report.FailureReason)
	}
	if len(report.DepGraph.Summary.Violations) != 1 || !report.DepGraph.Summary.Violations[0].IsCircular() {
		t.Errorf("unexpected violations %+v", report.DepGraph.Summary.Violations)
	}

	call := runner.analysisCall(t)
	cfgPath := flagValue(call.args, "--config")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	var written map[string]any
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("config is not JSON: %v", err)
	}
	if !strings.Contains(string(data), `"circular": true`) || !strings.Contains(string(data), "tsconfig.json") {
		t.Errorf("unexpected config %s", data)
	}
}

func TestDeadCodeAdapter_FiltersToCollectedFiles(t *testing.T) {
	runner := &fakeRunner{version: "5.30.0"}
	runner.handler = func(call runCall) (*CommandResult, error) {
		payload := `{"files":["src/orphan.ts","scripts/tool.ts"],"issues":[` +
			`{"file":"src/unused.ts","exports":[{"name":"helper","line":4}]},` +
			`{"file":"src/clean.ts","dependencies":[{"name":"lodash"}]},` +
			`{"file":"scripts/tool.ts","exports":[{"name":"main"}]}]}`
		return &CommandResult{Stdout: []byte(payload)}, nil
	}
	adapter := NewDeadCodeAdapter(config.DefaultConfig().Tools.DeadCode, runner, nil)
	in := adapterInput(t, "src/orphan.ts", "src/unused.ts", "src/clean.ts")

	report := adapter.Run(context.Background(), in)

	if !report.Usable() {
		t.Fatalf("expected usable report, got failure %q", report.FailureReason)
	}
	if len(report.DeadCode.Files) != 1 || report.DeadCode.Files[0] != "src/orphan.ts" {
		t.Errorf("unexpected files %v", report.DeadCode.Files)
	}
	if len(report.DeadCode.Issues) != 1 || report.DeadCode.Issues[0].File != "src/unused.ts" {
		t.Errorf("unexpected issues %+v", report.DeadCode.Issues)
	}

	joined := strings.Join(runner.analysisCall(t).args, " ")
	if !strings.Contains(joined, "--reporter json") {
		t.Errorf("unexpected args %s", joined)
	}
}

func TestFilterDeadCode_EmptySetKeepsAll(t *testing.T) {
	dc := &domain.DeadCodeReport{
		Files:  []string{"a.ts"},
		Issues: []domain.DeadCodeIssue{{File: "b.ts", Types: []domain.DeadCodeSymbol{{Name: "T"}}}},
	}

	out := filterDeadCode(dc, "/root", nil)

	if len(out.Files) != 1 || len(out.Issues) != 1 {
		t.Errorf("expected everything kept, got %+v", out)
	}
}

func TestLineCountAdapter_CountsFiles(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/greet.ts": "// greeting\nexport function hello() {\n  return 'hi'\n}\n",
		"src/b.js":     "const x = 1\n",
	})
	adapter := NewLineCountAdapter(config.DefaultConfig().Tools.LineCount, nil)
	in := domain.AdapterInput{
		Root: root,
		Files: []string{
			filepath.Join(root, "src", "greet.ts"),
			filepath.Join(root, "src", "b.js"),
			filepath.Join(root, "src", "missing.ts"),
		},
	}

	report := adapter.Run(context.Background(), in)

	if !report.Usable() {
		t.Fatalf("expected usable report, got failure %q", report.FailureReason)
	}
	if !strings.HasPrefix(report.Version, "scc ") {
		t.Errorf("unexpected version %q", report.Version)
	}
	files := report.LineCount.Files
	if len(files) != 2 {
		t.Fatalf("expected 2 counted files, got %d", len(files))
	}
	if files[0].Path != "src/b.js" || files[1].Path != "src/greet.ts" {
		t.Errorf("files should be sorted by path, got %s, %s", files[0].Path, files[1].Path)
	}

	greet := files[1]
	if greet.Lines != 4 || greet.Code != 3 || greet.Comment != 1 || greet.Blank != 0 {
		t.Errorf("unexpected counts %+v", greet)
	}
	if greet.Language != "TypeScript" {
		t.Errorf("unexpected language %q", greet.Language)
	}
	if greet.Functions == nil || *greet.Functions != 1 {
		t.Errorf("expected one function, got %v", greet.Functions)
	}
	if greet.MaxFunctionLength == nil || *greet.MaxFunctionLength != 3 {
		t.Errorf("expected max function length 3, got %v", greet.MaxFunctionLength)
	}
}

func TestLineCountAdapter_Disabled(t *testing.T) {
	cfg := config.DefaultConfig().Tools.LineCount
	cfg.Enabled = false
	adapter := NewLineCountAdapter(cfg, nil)

	report := adapter.Run(context.Background(), domain.AdapterInput{Root: t.TempDir()})

	if !report.Failed || report.FailureReason != DisabledReason {
		t.Errorf("expected disabled report, got %+v", report)
	}
	if adapter.Timeout() != time.Duration(config.DefaultLineCountTimeoutSeconds)*time.Second {
		t.Errorf("unexpected timeout %v", adapter.Timeout())
	}
}

func TestExecRunner_ExitCodeIsNotAnError(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	runner := NewExecRunner()

	res, err := runner.Run(context.Background(), t.TempDir(), "/bin/sh", "-c", "echo out; echo boom >&2; exit 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "out" || res.StderrSummary() != "boom" {
		t.Errorf("unexpected output %q / %q", res.Stdout, res.StderrSummary())
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewExecRunner().Run(ctx, t.TempDir(), "/bin/sh", "-c", "sleep 5")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestExecRunner_TimeoutStopsBackgroundChildren(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("process groups are unix only")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewExecRunner().Run(ctx, dir, "/bin/sh", "-c", "(sleep 1; echo late > late.json) & wait")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 800*time.Millisecond {
		t.Errorf("Run should return near the deadline, took %s", elapsed)
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(filepath.Join(dir, "late.json")); !os.IsNotExist(err) {
		t.Error("a background child of the tool outlived the timeout and wrote its output")
	}
}

func TestExecRunner_ReapsLeftoverChildren(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("process groups are unix only")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()

	res, err := NewExecRunner().Run(context.Background(), dir, "/bin/sh", "-c", "(sleep 1; echo late > late.json) >/dev/null 2>&1 & echo done")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "done" {
		t.Errorf("unexpected output %q", res.Stdout)
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(filepath.Join(dir, "late.json")); !os.IsNotExist(err) {
		t.Error("a process left behind by the tool kept running")
	}
}

func TestJSONPayload(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  {\"a\":1}\n", `{"a":1}`},
		{"banner line\n[1,2]", "[1,2]"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := string(jsonPayload([]byte(tt.in))); got != tt.want {
			t.Errorf("jsonPayload(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileArgs(t *testing.T) {
	small := []string{"src/a.ts", "src/b.ts"}
	if got, narrowed := fileArgs(small); narrowed || len(got) != 2 {
		t.Errorf("small lists should pass through, got %v (narrowed=%v)", got, narrowed)
	}

	var large []string
	for i := 0; i < maxFileArgBytes/10; i++ {
		large = append(large, fmt.Sprintf("src/f%05d.ts", i))
	}
	got, narrowed := fileArgs(large)
	if !narrowed || len(got) != 1 || got[0] != "." {
		t.Errorf("oversized lists should collapse to the root, got %d args", len(got))
	}
}

func TestNarrowedResultsKeepCollectedFiles(t *testing.T) {
	files := []string{testRoot + "/src/app.ts"}

	lint := filterLintResults([]domain.LintFileResult{
		{FilePath: testRoot + "/src/app.ts"},
		{FilePath: testRoot + "/vendor/lib.js"},
	}, testRoot, files)
	if len(lint) != 1 || lint[0].FilePath != testRoot+"/src/app.ts" {
		t.Errorf("unexpected lint results %+v", lint)
	}

	modules := filterModules([]domain.DepModule{
		{Source: "src/app.ts"},
		{Source: "scripts/build.ts"},
	}, testRoot, files)
	if len(modules) != 1 || modules[0].Source != "src/app.ts" {
		t.Errorf("unexpected modules %+v", modules)
	}

	if !newCollectedSet(testRoot, nil).has(testRoot, "anything.ts") {
		t.Error("an empty collected set should accept everything")
	}
}
