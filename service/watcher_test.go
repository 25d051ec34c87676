package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/internal/ignore"
	"github.com/ludo-technologies/jsboard/internal/testutil"
)

type notifications struct {
	mu    sync.Mutex
	paths []string
}

func (n *notifications) add(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *notifications) has(path string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, p := range n.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.paths)
}

func startWatcher(t *testing.T, root string) *notifications {
	t.Helper()
	cfg := config.DefaultConfig()
	matcher, err := ignore.New(root, cfg.Analysis.IncludePatterns, cfg.Analysis.ExcludePatterns, false)
	if err != nil {
		t.Fatal(err)
	}

	got := &notifications{}
	w, err := NewWatcher(matcher, got.add, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.AddTree(root); err != nil {
		t.Fatalf("AddTree failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return got
}

func TestWatcher_NotifiesOnSourceChanges(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/app.ts":              "export const a = 1\n",
		"node_modules/lib/dep.js": "module.exports = {}\n",
	})
	got := startWatcher(t, root)

	target := filepath.Join(root, "src", "app.ts")
	if err := os.WriteFile(target, []byte("export const a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	testutil.Eventually(t, 2*time.Second, func() bool { return got.has(target) }, "write to src/app.ts")
}

func TestWatcher_IgnoresExcludedAndForeignFiles(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{
		"src/app.ts":              "",
		"node_modules/lib/dep.js": "",
	})
	got := startWatcher(t, root)

	if err := os.WriteFile(filepath.Join(root, "node_modules", "lib", "dep.js"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "notes.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if n := got.count(); n != 0 {
		t.Errorf("Expected no notifications, got %d: %v", n, got.paths)
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := testutil.WriteProject(t, map[string]string{"src/app.ts": ""})
	got := startWatcher(t, root)

	dir := filepath.Join(root, "src", "feature")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.Eventually(t, 2*time.Second, func() bool { return got.has(dir) }, "new directory")

	file := filepath.Join(dir, "view.tsx")
	testutil.Eventually(t, 2*time.Second, func() bool {
		// The directory watch is added asynchronously; rewrite until seen
		_ = os.WriteFile(file, []byte("export {}\n"), 0o644)
		return got.has(file)
	}, "file in new directory")
}
