package extract

import (
	"sort"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// Files maps every line-count entry to FileMetrics, sorted by identity.
// Dependency and dependent counts are joined from deps when it is non-nil.
func Files(lc *domain.LineCountReport, deps *domain.DepGraphReport, res *identity.Resolver) []domain.FileMetrics {
	if lc == nil {
		return []domain.FileMetrics{}
	}

	edges := dependencyCounts(deps, res)

	byID := make(map[domain.FileIdentity]int, len(lc.Files))
	out := make([]domain.FileMetrics, 0, len(lc.Files))
	for _, e := range lc.Files {
		id, ok := identify(res, e.Path)
		if !ok {
			continue
		}
		if _, dup := byID[id]; dup {
			continue
		}
		m := domain.FileMetrics{
			File:              id,
			Language:          e.Language,
			Lines:             e.Lines,
			CodeLines:         e.Code,
			CommentLines:      e.Comment,
			BlankLines:        e.Blank,
			FunctionCount:     e.Functions,
			AvgFunctionLength: e.AvgFunctionLength,
			MaxFunctionLength: e.MaxFunctionLength,
			Complexity:        e.Complexity,
		}
		if c, ok := edges[id]; ok {
			m.Dependencies = domain.IntPtr(c.out)
			m.Dependents = domain.IntPtr(c.in)
		}
		byID[id] = len(out)
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// LargestFiles ranks files by total lines, descending, ties by identity,
// and keeps the first topN. A non-positive topN means domain.DefaultTopN.
func LargestFiles(lc *domain.LineCountReport, deps *domain.DepGraphReport, res *identity.Resolver, topN int) []domain.FileMetrics {
	return RankLargest(Files(lc, deps, res), topN)
}

// RankLargest orders already extracted metrics the way LargestFiles does,
// without touching files
func RankLargest(files []domain.FileMetrics, topN int) []domain.FileMetrics {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	ranked := make([]domain.FileMetrics, len(files))
	copy(ranked, files)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Lines != ranked[j].Lines {
			return ranked[i].Lines > ranked[j].Lines
		}
		return ranked[i].File < ranked[j].File
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

type edgeCount struct {
	out, in int
}

// dependencyCounts counts distinct local outgoing and incoming edges per file.
// Core modules and unresolvable imports are not files and are skipped.
func dependencyCounts(deps *domain.DepGraphReport, res *identity.Resolver) map[domain.FileIdentity]edgeCount {
	counts := make(map[domain.FileIdentity]edgeCount)
	if deps == nil {
		return counts
	}

	seen := make(map[[2]domain.FileIdentity]bool)
	for _, m := range deps.Modules {
		if m.CoreModule || m.CouldNotResolve || external(m.Source) {
			continue
		}
		from, ok := identify(res, m.Source)
		if !ok {
			continue
		}
		if _, ok := counts[from]; !ok {
			counts[from] = edgeCount{}
		}
		for _, d := range m.Dependencies {
			if d.CoreModule || d.CouldNotResolve || d.Resolved == "" || external(d.Resolved) {
				continue
			}
			to, ok := identify(res, d.Resolved)
			if !ok || to == from {
				continue
			}
			edge := [2]domain.FileIdentity{from, to}
			if seen[edge] {
				continue
			}
			seen[edge] = true

			c := counts[from]
			c.out++
			counts[from] = c

			t := counts[to]
			t.in++
			counts[to] = t
		}
	}
	return counts
}
