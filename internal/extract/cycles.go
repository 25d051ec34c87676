package extract

import (
	"sort"
	"strings"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// Cycles collects circular-dependency violations. Each cycle lists its
// members once, in first-reported order, starting at the violation's source.
// Cycles with the same member set are reported once, keeping the first.
// A cycle with an ambiguous member is dropped whole. Reports without
// circular violations, e.g. from a configuration lacking the no-circular
// rule, fall back to the components of edges marked circular.
func Cycles(deps *domain.DepGraphReport, res *identity.Resolver) []domain.Cycle {
	cycles := []domain.Cycle{}
	if deps == nil {
		return cycles
	}

	seen := make(map[string]bool)
	add := func(members []domain.FileIdentity) {
		key := memberKey(members)
		if seen[key] {
			return
		}
		seen[key] = true
		cycles = append(cycles, domain.Cycle{Paths: members})
	}

	violations := 0
	for _, v := range deps.Summary.Violations {
		if !v.IsCircular() {
			continue
		}
		violations++
		members, ok := cycleMembers(v, res)
		if !ok || len(members) == 0 {
			continue
		}
		add(members)
	}
	if violations > 0 {
		return cycles
	}

	for _, scc := range newCircularGraph(deps.Modules).components() {
		members, ok := resolveAll(scc, res)
		if ok && len(members) > 1 {
			add(members)
		}
	}
	return cycles
}

// cycleMembers expands a violation into its distinct members. The reported
// cycle usually omits the source or repeats it as the closing hop.
func cycleMembers(v domain.DepViolation, res *identity.Resolver) ([]domain.FileIdentity, bool) {
	names := make([]string, 0, len(v.Cycle)+1)
	if v.From != "" && (len(v.Cycle) == 0 || v.Cycle[0].Name != v.From) {
		names = append(names, v.From)
	}
	for _, step := range v.Cycle {
		names = append(names, step.Name)
	}
	if len(v.Cycle) == 0 && v.To != "" {
		names = append(names, v.To)
	}

	return resolveAll(names, res)
}

// resolveAll maps names to distinct identities, failing on any ambiguous one
func resolveAll(names []string, res *identity.Resolver) ([]domain.FileIdentity, bool) {
	members := make([]domain.FileIdentity, 0, len(names))
	seen := make(map[domain.FileIdentity]bool, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		id, ok := identify(res, n)
		if !ok {
			return nil, false
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}
	return members, true
}

func memberKey(members []domain.FileIdentity) string {
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = string(m)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}
