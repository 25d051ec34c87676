package schema

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/jsboard/domain"
)

func mustValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	return v
}

func TestValidateTool(t *testing.T) {
	v := mustValidator(t)

	tests := []struct {
		name    string
		kind    domain.ToolKind
		data    string
		wantErr bool
	}{
		{
			name: "lint report",
			kind: domain.ToolKindLint,
			data: `[{"filePath":"/p/src/a.ts","messages":[{"ruleId":"complexity","severity":1,"message":"complexity of 12","line":3,"column":1}],"errorCount":0,"warningCount":1}]`,
		},
		{
			name: "lint parse error has null rule",
			kind: domain.ToolKindLint,
			data: `[{"filePath":"/p/src/a.ts","messages":[{"ruleId":null,"severity":2,"message":"Parsing error","line":1}]}]`,
		},
		{
			name:    "lint object instead of array",
			kind:    domain.ToolKindLint,
			data:    `{"results":[]}`,
			wantErr: true,
		},
		{
			name:    "lint missing file path",
			kind:    domain.ToolKindLint,
			data:    `[{"messages":[]}]`,
			wantErr: true,
		},
		{
			name: "deps with both cycle shapes",
			kind: domain.ToolKindDependencyGraph,
			data: `{"modules":[{"source":"src/a.ts","dependencies":[{"resolved":"src/b.ts","circular":true}]}],
				"summary":{"violations":[{"from":"src/a.ts","to":"src/b.ts","rule":{"name":"no-circular","severity":"warn"},
				"cycle":["src/b.ts",{"name":"src/a.ts"}]}],"totalCruised":2}}`,
		},
		{
			name:    "deps cycle step of wrong type",
			kind:    domain.ToolKindDependencyGraph,
			data:    `{"modules":[],"summary":{"violations":[{"from":"a","to":"b","rule":{"name":"no-circular"},"cycle":[42]}]}}`,
			wantErr: true,
		},
		{
			name:    "deps missing summary",
			kind:    domain.ToolKindDependencyGraph,
			data:    `{"modules":[]}`,
			wantErr: true,
		},
		{
			name: "knip report",
			kind: domain.ToolKindDeadCode,
			data: `{"files":["src/orphan.ts"],"issues":[{"file":"src/unused.ts","exports":[{"name":"helper","line":3,"col":14}],"dependencies":[]}]}`,
		},
		{
			name:    "knip export without name",
			kind:    domain.ToolKindDeadCode,
			data:    `{"issues":[{"file":"src/unused.ts","exports":[{"line":3}]}]}`,
			wantErr: true,
		},
		{
			name: "line count report",
			kind: domain.ToolKindLineCount,
			data: `{"files":[{"path":"src/a.ts","lines":10,"code":8,"comment":1,"blank":1,"functions":2,"avg_function_length":3.5}]}`,
		},
		{
			name:    "line count negative lines",
			kind:    domain.ToolKindLineCount,
			data:    `{"files":[{"path":"src/a.ts","lines":-1,"code":0,"comment":0,"blank":0}]}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			kind:    domain.ToolKindLint,
			data:    `Oops! Something went wrong!`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTool(tt.kind, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTool() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTool_UnknownKind(t *testing.T) {
	v := mustValidator(t)
	if err := v.ValidateTool("sonar", []byte(`{}`)); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestValidateSnapshot(t *testing.T) {
	v := mustValidator(t)

	valid := `{
		"root": "/p",
		"largest_files": [{"file":"src/app.ts","loc":450,"code":400,"comment":20,"blank":30}],
		"complex_functions": [],
		"max_line_offenders": [{"file":"src/app.ts","kind":"file","value":450,"limit":400}],
		"cycles": [{"paths":["src/a.ts","src/b.ts"]}],
		"dead_code": [{"file":"src/unused.ts","symbol":"helper","kind":"export"}],
		"files": [],
		"data_quality": {"ambiguous_references":0,"unresolved_references":0,"failed_tools":[]},
		"tool_versions": {"lint":"9.0.0"},
		"generated_at": "2026-01-02T03:04:05Z"
	}`
	if err := v.ValidateSnapshot([]byte(valid)); err != nil {
		t.Errorf("Valid snapshot rejected: %v", err)
	}

	nullSlice := strings.Replace(valid, `"cycles": [{"paths":["src/a.ts","src/b.ts"]}]`, `"cycles": null`, 1)
	if err := v.ValidateSnapshot([]byte(nullSlice)); err == nil {
		t.Error("Snapshot with null slice should be rejected")
	}

	badKind := strings.Replace(valid, `"kind":"export"`, `"kind":"symbol"`, 1)
	if err := v.ValidateSnapshot([]byte(badKind)); err == nil {
		t.Error("Snapshot with unknown dead-code kind should be rejected")
	}
}

func TestDefault(t *testing.T) {
	a, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	b, _ := Default()
	if a != b {
		t.Error("Default should return the same validator")
	}
}
