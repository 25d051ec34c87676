package extract

import (
	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// DeadCode flattens unused files and unused exports into one sequence:
// files first, then exports and exported types per issue, in report order
func DeadCode(dc *domain.DeadCodeReport, res *identity.Resolver) []domain.DeadCodeItem {
	items := []domain.DeadCodeItem{}
	if dc == nil {
		return items
	}

	for _, f := range dc.Files {
		id, ok := identify(res, f)
		if !ok {
			continue
		}
		items = append(items, domain.DeadCodeItem{File: id, Kind: domain.DeadCodeKindFile})
	}

	for _, issue := range dc.Issues {
		if len(issue.Exports) == 0 && len(issue.Types) == 0 {
			continue
		}
		id, ok := identify(res, issue.File)
		if !ok {
			continue
		}
		for _, group := range [][]domain.DeadCodeSymbol{issue.Exports, issue.Types} {
			for _, sym := range group {
				items = append(items, domain.DeadCodeItem{
					File:   id,
					Symbol: sym.Name,
					Kind:   domain.DeadCodeKindExport,
					Line:   sym.Line,
				})
			}
		}
	}
	return items
}
