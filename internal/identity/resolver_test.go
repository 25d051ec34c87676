package identity

import (
	"sync"
	"testing"

	"github.com/ludo-technologies/jsboard/domain"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		path string
		root string
		want domain.FileIdentity
	}{
		{"absolute under root", "/home/u/proj/src/foo.ts", "/home/u/proj", "src/foo.ts"},
		{"root with trailing slash", "/home/u/proj/src/foo.ts", "/home/u/proj/", "src/foo.ts"},
		{"relative with dot prefix", "./src/foo.ts", "/home/u/proj", "src/foo.ts"},
		{"dot segments", "src/./lib/../foo.ts", "", "src/foo.ts"},
		{"windows separators", "src\\components\\Button.tsx", "", "src/components/Button.tsx"},
		{"windows absolute", "C:\\work\\proj\\src\\a.ts", "C:\\work\\proj", "src/a.ts"},
		{"absolute outside root", "/tmp/other/foo.ts", "/home/u/proj", "/tmp/other/foo.ts"},
		{"sibling prefix is not a parent", "/home/u/project2/a.ts", "/home/u/proj", "/home/u/project2/a.ts"},
		{"root itself", "/home/u/proj", "/home/u/proj", "."},
		{"filesystem root", "/a.ts", "/", "a.ts"},
		{"empty", "", "/home/u/proj", ""},
		{"blank", "   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.path, tt.root); got != tt.want {
				t.Errorf("Canonicalize(%q, %q) = %q, want %q", tt.path, tt.root, got, tt.want)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"src/foo.ts", []string{"src", "foo.ts"}},
		{"/abs/src/foo.ts", []string{"abs", "src", "foo.ts"}},
		{"C:/work/a.ts", []string{"work", "a.ts"}},
		{"./a//b/", []string{"a", "b"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		got := Segments(tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
				break
			}
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"absolute vs relative", "/home/u/proj/src/foo.ts", "src/foo.ts", true},
		{"substring is not a segment", "src/foo.ts", "src/barfoo.ts", false},
		{"identical", "src/foo.ts", "src/foo.ts", true},
		{"bare file name", "foo.ts", "lib/deep/foo.ts", true},
		{"diverging directories", "a/b/foo.ts", "c/foo.ts", false},
		{"different file names", "src/foo.ts", "src/foo.js", false},
		{"dot prefix ignored", "./src/foo.ts", "src/foo.ts", true},
		{"empty never matches", "", "src/foo.ts", false},
		{"case sensitive", "src/Foo.ts", "src/foo.ts", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.a, tt.b); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Matches(tt.b, tt.a); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestCommonSuffix(t *testing.T) {
	if n := CommonSuffix([]string{"a", "b", "c"}, []string{"x", "b", "c"}); n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}
	if n := CommonSuffix([]string{"a"}, []string{"b"}); n != 0 {
		t.Errorf("Expected 0, got %d", n)
	}
	if n := CommonSuffix(nil, []string{"b"}); n != 0 {
		t.Errorf("Expected 0, got %d", n)
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("/home/u/proj", []domain.FileIdentity{
		"src/app.ts",
		"src/utils/format.ts",
		"lib/utils/format.ts",
		"packages/web/src/index.ts",
	})

	tests := []struct {
		name    string
		ref     string
		want    domain.FileIdentity
		outcome Outcome
	}{
		{"exact relative", "src/app.ts", "src/app.ts", Exact},
		{"exact after canonicalization", "/home/u/proj/src/app.ts", "src/app.ts", Exact},
		{"truncated path", "web/src/index.ts", "packages/web/src/index.ts", Suffix},
		{"absolute from another checkout", "/ci/build/src/app.ts", "src/app.ts", Suffix},
		{"longest suffix wins", "x/src/utils/format.ts", "src/utils/format.ts", Suffix},
		{"tied suffix is ambiguous", "utils/format.ts", "", Ambiguous},
		{"unknown file", "src/missing.ts", "", Unresolved},
		{"substring file name", "src/pp.ts", "", Unresolved},
		{"empty", "", "", Unresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := r.Resolve(tt.ref)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
			if outcome != tt.outcome {
				t.Errorf("Resolve(%q) outcome = %s, want %s", tt.ref, outcome, tt.outcome)
			}
			if outcome.Matched() != (tt.want != "") {
				t.Errorf("Matched() = %v for %s", outcome.Matched(), outcome)
			}
		})
	}
}

func TestResolver_PartialMatchFailsClosedWhenAmbiguous(t *testing.T) {
	// a/b/foo.ts and c/foo.ts share only the file name.
	single := NewResolver("", []domain.FileIdentity{"a/b/foo.ts"})
	if got, outcome := single.Resolve("c/foo.ts"); got != "a/b/foo.ts" || outcome != Partial {
		t.Errorf("Single candidate: got %q (%s), want a/b/foo.ts (partial)", got, outcome)
	}

	three := NewResolver("", []domain.FileIdentity{"a/b/foo.ts", "c/foo.ts", "d/e/foo.ts"})

	if got, outcome := three.Resolve("c/foo.ts"); got != "c/foo.ts" || outcome != Exact {
		t.Errorf("Exact candidate must win: got %q (%s)", got, outcome)
	}
	if got, outcome := three.Resolve("x/foo.ts"); got != "" || outcome != Ambiguous {
		t.Errorf("Three-way partial tie must not match: got %q (%s)", got, outcome)
	}
	if got, outcome := three.Resolve("b/foo.ts"); got != "a/b/foo.ts" || outcome != Suffix {
		t.Errorf("Suffix candidate must beat partial ones: got %q (%s)", got, outcome)
	}

	stats := three.Stats()
	if stats.Ambiguous != 1 {
		t.Errorf("Expected 1 ambiguous reference, got %d", stats.Ambiguous)
	}
	if stats.Unresolved != 0 {
		t.Errorf("Expected 0 unresolved references, got %d", stats.Unresolved)
	}
}

func TestResolver_DeduplicatesCandidates(t *testing.T) {
	r := NewResolver("/p", []domain.FileIdentity{"src/a.ts", "./src/a.ts", "/p/src/a.ts", ""})
	if r.Len() != 1 {
		t.Errorf("Expected 1 candidate, got %d", r.Len())
	}
	if got, outcome := r.Resolve("a.ts"); got != "src/a.ts" || outcome != Suffix {
		t.Errorf("Duplicates must not cause ambiguity: got %q (%s)", got, outcome)
	}
}

func TestResolver_ConcurrentUse(t *testing.T) {
	r := NewResolver("", []domain.FileIdentity{"a/x.ts", "b/x.ts"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Resolve("x.ts")
			r.Resolve("nope.ts")
		}()
	}
	wg.Wait()

	stats := r.Stats()
	if stats.Ambiguous != 20 || stats.Unresolved != 20 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestOutcome_String(t *testing.T) {
	names := map[Outcome]string{
		Exact:      "exact",
		Suffix:     "suffix",
		Partial:    "partial",
		Ambiguous:  "ambiguous",
		Unresolved: "unresolved",
	}
	for o, want := range names {
		if o.String() != want {
			t.Errorf("Outcome(%d).String() = %s, want %s", o, o.String(), want)
		}
	}
}
