package extract

import (
	"math"
	"sort"

	"github.com/go-enry/go-enry/v2"

	"github.com/ludo-technologies/jsboard/domain"
)

// OtherLanguage groups files whose language can't be determined
const OtherLanguage = "Other"

// Composition summarizes the line-count report. Language percentages are
// shares of total code lines, rounded to two decimals. When no file has code
// lines, shares of total lines are used instead, and shares of the file
// count when every file is empty, so percentages always sum to 100. Returns
// nil when the report is missing or empty.
func Composition(lc *domain.LineCountReport) *domain.Composition {
	if lc == nil || len(lc.Files) == 0 {
		return nil
	}

	c := &domain.Composition{Languages: []domain.LanguageShare{}}
	byLang := make(map[string]*domain.LanguageShare)
	sizes := make([]int64, 0, len(lc.Files))

	for _, e := range lc.Files {
		c.TotalFiles++
		c.TotalLines += e.Lines
		c.TotalCode += e.Code
		c.TotalComment += e.Comment
		c.TotalBlank += e.Blank
		sizes = append(sizes, e.Lines)

		lang := LanguageOf(e.Path, e.Language)
		share, ok := byLang[lang]
		if !ok {
			share = &domain.LanguageShare{Language: lang}
			byLang[lang] = share
		}
		share.Files++
		share.Lines += e.Lines
		share.CodeLines += e.Code
	}

	var part func(*domain.LanguageShare) int64
	var total int64
	switch {
	case c.TotalCode > 0:
		c.ShareBasis, total = domain.ShareOfCode, c.TotalCode
		part = func(s *domain.LanguageShare) int64 { return s.CodeLines }
	case c.TotalLines > 0:
		c.ShareBasis, total = domain.ShareOfLines, c.TotalLines
		part = func(s *domain.LanguageShare) int64 { return s.Lines }
	default:
		c.ShareBasis, total = domain.ShareOfFiles, int64(c.TotalFiles)
		part = func(s *domain.LanguageShare) int64 { return int64(s.Files) }
	}
	for _, share := range byLang {
		share.Percentage = round2(float64(part(share)) / float64(total) * 100)
		c.Languages = append(c.Languages, *share)
	}
	sort.Slice(c.Languages, func(i, j int) bool {
		a, b := c.Languages[i], c.Languages[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.CodeLines != b.CodeLines {
			return a.CodeLines > b.CodeLines
		}
		return a.Language < b.Language
	})

	c.AverageFileLines = round2(float64(c.TotalLines) / float64(c.TotalFiles))
	c.MedianFileLines = median(sizes)
	return c
}

// LanguageOf maps a file to its language by extension. An ambiguous
// extension defers to the reported language before using the first guess.
func LanguageOf(path, reported string) string {
	lang, safe := enry.GetLanguageByExtension(path)
	switch {
	case lang != "" && safe:
		return lang
	case reported != "":
		return reported
	case lang != "":
		return lang
	}
	return OtherLanguage
}

func median(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
