package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

var jsIncludes = []string{"**/*.js", "**/*.ts", "**/*.tsx"}

func TestMatcher_Accept(t *testing.T) {
	root := t.TempDir()
	m, err := New(root, jsIncludes, []string{"node_modules", "dist", "*.min.js"}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"src/app.ts", true},
		{"index.js", true},
		{"src/components/Button.tsx", true},
		{"README.md", false},
		{"node_modules/react/index.js", false},
		{"packages/web/node_modules/x/y.js", false},
		{"dist/bundle.js", false},
		{"src/vendor.min.js", false},
		{".git/hooks/pre-commit.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Accept(filepath.Join(root, tt.path)); got != tt.want {
				t.Errorf("Accept(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMatcher_OutsideRoot(t *testing.T) {
	root := t.TempDir()
	m, err := New(filepath.Join(root, "proj"), jsIncludes, nil, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !m.Excluded(filepath.Join(root, "other", "a.ts")) {
		t.Error("Path outside root should be excluded")
	}
	if m.Excluded(filepath.Join(root, "proj")) {
		t.Error("Root itself should not be excluded")
	}
}

func TestMatcher_Gitignore(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\n*.gen.ts\n"), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}

	with, err := New(root, jsIncludes, nil, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	without, err := New(root, jsIncludes, nil, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, p := range []string{"generated/api.ts", "src/types.gen.ts"} {
		abs := filepath.Join(root, p)
		if with.Accept(abs) {
			t.Errorf("%s should be ignored when gitignore is honored", p)
		}
		if !without.Accept(abs) {
			t.Errorf("%s should be accepted when gitignore is off", p)
		}
	}
}

func TestMatcher_ExcludeDir(t *testing.T) {
	root := t.TempDir()
	m, err := New(root, nil, nil, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	reports := filepath.Join(root, ".jsboard")
	m.ExcludeDir(reports)

	if !m.Excluded(filepath.Join(reports, "lint.json")) {
		t.Error("Files under an excluded dir should be excluded")
	}
	if m.Excluded(filepath.Join(root, ".jsboardrc.js")) {
		t.Error("Sibling with the same prefix must not be excluded")
	}
}

func TestMatcher_EmptyIncludeAcceptsAll(t *testing.T) {
	root := t.TempDir()
	m, err := New(root, nil, nil, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !m.Accept(filepath.Join(root, "docs", "notes.txt")) {
		t.Error("Empty include list should accept every file")
	}
}
