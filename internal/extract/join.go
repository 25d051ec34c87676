// Package extract turns raw tool reports into the slices of a snapshot.
// Every extractor is a pure function of its reports and an identity
// resolver; none performs I/O.
package extract

import (
	"strings"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// identify maps a tool-reported path onto a snapshot identity.
// Ambiguous references are dropped. References no candidate knows are kept
// under their canonical form so issues for uncounted files still surface.
func identify(res *identity.Resolver, ref string) (domain.FileIdentity, bool) {
	id, outcome := res.Resolve(ref)
	switch {
	case outcome.Matched():
		return id, true
	case outcome == identity.Ambiguous:
		return "", false
	}
	c := identity.Canonicalize(ref, res.Root())
	return c, c != "" && c != "."
}

// external reports whether a dependency path points outside the project's
// own sources
func external(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.HasPrefix(p, "node_modules/") || strings.Contains(p, "/node_modules/")
}
