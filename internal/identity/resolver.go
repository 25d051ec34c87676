// Package identity decides whether file references reported by different
// tools denote the same source file.
//
// Tools report paths inconsistently: absolute, relative to the analysis root,
// relative to some other working directory, or truncated to the last few
// segments. All comparisons here work on whole path segments; raw substring
// containment is never used, so "foo.ts" can never match "barfoo.ts".
package identity

import (
	"path"
	"strings"
	"sync/atomic"

	"github.com/ludo-technologies/jsboard/domain"
)

// Outcome describes how a reference was resolved against a candidate set
type Outcome int

const (
	// Unresolved means no candidate shares even the file name
	Unresolved Outcome = iota

	// Exact means the canonical reference equals a candidate
	Exact

	// Suffix means one path is a whole-segment suffix of the other
	Suffix

	// Partial means the paths share trailing segments but neither is a
	// suffix of the other; only accepted when a single candidate qualifies
	Partial

	// Ambiguous means several candidates tie for the best match
	Ambiguous
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case Exact:
		return "exact"
	case Suffix:
		return "suffix"
	case Partial:
		return "partial"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// Matched reports whether the outcome produced an identity
func (o Outcome) Matched() bool {
	return o == Exact || o == Suffix || o == Partial
}

// Canonicalize turns a tool-reported path into a FileIdentity. Backslashes
// become slashes, "." and ".." segments are collapsed, and a path under root
// is made relative to it. Absolute paths outside root stay absolute.
func Canonicalize(p, root string) domain.FileIdentity {
	p = toSlash(strings.TrimSpace(p))
	if p == "" {
		return ""
	}
	p = path.Clean(p)

	if root = toSlash(strings.TrimSpace(root)); root != "" && isAbs(p) {
		root = path.Clean(root)
		switch {
		case p == root:
			return "."
		case root == "/":
			p = strings.TrimPrefix(p, "/")
		case strings.HasPrefix(p, root+"/"):
			p = p[len(root)+1:]
		}
	}
	return domain.FileIdentity(p)
}

// Segments splits a path into its non-empty segments, ignoring "." and any
// drive or root prefix
func Segments(p string) []string {
	p = toSlash(p)
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	if len(out) > 0 && isDrive(out[0]) {
		out = out[1:]
	}
	return out
}

// Matches reports whether a and b denote the same file: one must be a whole
// segment suffix of the other, sharing at least one segment. Matches is
// symmetric.
func Matches(a, b string) bool {
	sa := Segments(string(Canonicalize(a, "")))
	sb := Segments(string(Canonicalize(b, "")))
	return isSegmentSuffix(sa, sb)
}

// CommonSuffix returns how many trailing segments a and b share
func CommonSuffix(a, b []string) int {
	n := 0
	for i, j := len(a)-1, len(b)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		if a[i] != b[j] {
			break
		}
		n++
	}
	return n
}

func isSegmentSuffix(a, b []string) bool {
	short := len(a)
	if len(b) < short {
		short = len(b)
	}
	if short == 0 {
		return false
	}
	return CommonSuffix(a, b) == short
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || (len(p) >= 3 && isDrive(p[:2]) && p[2] == '/')
}

func isDrive(s string) bool {
	if len(s) != 2 || s[1] != ':' {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Stats counts references that could not be joined
type Stats struct {
	Ambiguous  int
	Unresolved int
}

// Resolver maps references onto a fixed candidate set of identities.
// It is safe for concurrent use.
type Resolver struct {
	root       string
	exact      map[domain.FileIdentity]bool
	byBase     map[string][]candidate
	ambiguous  atomic.Int64
	unresolved atomic.Int64
}

type candidate struct {
	id       domain.FileIdentity
	segments []string
}

// NewResolver builds a resolver over the given candidates. Candidates are
// canonicalized against root.
func NewResolver(root string, candidates []domain.FileIdentity) *Resolver {
	r := &Resolver{
		root:   root,
		exact:  make(map[domain.FileIdentity]bool, len(candidates)),
		byBase: make(map[string][]candidate),
	}
	for _, c := range candidates {
		id := Canonicalize(string(c), root)
		if id == "" || r.exact[id] {
			continue
		}
		r.exact[id] = true
		segs := Segments(string(id))
		if len(segs) == 0 {
			continue
		}
		base := segs[len(segs)-1]
		r.byBase[base] = append(r.byBase[base], candidate{id: id, segments: segs})
	}
	return r
}

// Root returns the analysis root the resolver canonicalizes against
func (r *Resolver) Root() string {
	return r.root
}

// Len returns the number of distinct candidates
func (r *Resolver) Len() int {
	return len(r.exact)
}

// Resolve finds the candidate denoted by ref. Preference order: exact
// equality, then the longest whole-segment suffix match, then the longest
// shared trailing segments. A tie at the deciding tier fails closed with
// Ambiguous and no identity.
func (r *Resolver) Resolve(ref string) (domain.FileIdentity, Outcome) {
	id := Canonicalize(ref, r.root)
	if id == "" {
		r.unresolved.Add(1)
		return "", Unresolved
	}
	if r.exact[id] {
		return id, Exact
	}

	segs := Segments(string(id))
	if len(segs) == 0 {
		r.unresolved.Add(1)
		return "", Unresolved
	}
	pool := r.byBase[segs[len(segs)-1]]

	var (
		bestSuffix, bestPartial int
		suffixHits, partialHits []domain.FileIdentity
	)
	for _, c := range pool {
		shared := CommonSuffix(segs, c.segments)
		if isSegmentSuffix(segs, c.segments) {
			switch {
			case shared > bestSuffix:
				bestSuffix, suffixHits = shared, []domain.FileIdentity{c.id}
			case shared == bestSuffix:
				suffixHits = append(suffixHits, c.id)
			}
			continue
		}
		switch {
		case shared > bestPartial:
			bestPartial, partialHits = shared, []domain.FileIdentity{c.id}
		case shared == bestPartial:
			partialHits = append(partialHits, c.id)
		}
	}

	switch {
	case len(suffixHits) == 1:
		return suffixHits[0], Suffix
	case len(suffixHits) > 1:
		r.ambiguous.Add(1)
		return "", Ambiguous
	case len(partialHits) == 1:
		return partialHits[0], Partial
	case len(partialHits) > 1:
		r.ambiguous.Add(1)
		return "", Ambiguous
	}
	r.unresolved.Add(1)
	return "", Unresolved
}

// Stats returns the counts accumulated by Resolve so far
func (r *Resolver) Stats() Stats {
	return Stats{
		Ambiguous:  int(r.ambiguous.Load()),
		Unresolved: int(r.unresolved.Load()),
	}
}
