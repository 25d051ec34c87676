package domain

import "time"

// FileIdentity is the canonical key of one source file: a slash-separated
// path relative to the analysis root
type FileIdentity string

// String returns the identity as a plain path
func (f FileIdentity) String() string {
	return string(f)
}

// DefaultTopN caps the largest-files ranking
const DefaultTopN = 50

// OffenderKind tells whether a max-lines violation concerns a whole file or a function
type OffenderKind string

const (
	OffenderKindFile     OffenderKind = "file"
	OffenderKindFunction OffenderKind = "function"
)

// DeadCodeKind tells whether a dead-code item is a whole file or a single export
type DeadCodeKind string

const (
	DeadCodeKindFile   DeadCodeKind = "file"
	DeadCodeKindExport DeadCodeKind = "export"
)

// FileMetrics holds size and structure metrics for one file
type FileMetrics struct {
	File         FileIdentity `json:"file" yaml:"file"`
	Language     string       `json:"language,omitempty" yaml:"language,omitempty"`
	Lines        int64        `json:"loc" yaml:"loc"`
	CodeLines    int64        `json:"code" yaml:"code"`
	CommentLines int64        `json:"comment" yaml:"comment"`
	BlankLines   int64        `json:"blank" yaml:"blank"`

	FunctionCount     *int     `json:"functions,omitempty" yaml:"functions,omitempty"`
	AvgFunctionLength *float64 `json:"avg_function_length,omitempty" yaml:"avg_function_length,omitempty"`
	MaxFunctionLength *int     `json:"max_function_length,omitempty" yaml:"max_function_length,omitempty"`
	Complexity        *int64   `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Dependencies      *int     `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Dependents        *int     `json:"dependents,omitempty" yaml:"dependents,omitempty"`
}

// ComplexFunction is a complexity-style lint finding
type ComplexFunction struct {
	File    FileIdentity `json:"file" yaml:"file"`
	Line    int          `json:"line" yaml:"line"`
	RuleID  string       `json:"rule_id" yaml:"rule_id"`
	Metric  *int         `json:"metric,omitempty" yaml:"metric,omitempty"`
	Message string       `json:"message" yaml:"message"`
}

// MaxLineOffender is a file or function exceeding its configured line limit
type MaxLineOffender struct {
	File  FileIdentity `json:"file" yaml:"file"`
	Line  int          `json:"line,omitempty" yaml:"line,omitempty"`
	Kind  OffenderKind `json:"kind" yaml:"kind"`
	Value int          `json:"value" yaml:"value"`
	Limit int          `json:"limit" yaml:"limit"`
}

// Cycle is a closed dependency path. Paths holds each member once, in the
// order first reported; the edge from the last member back to the first is implied.
type Cycle struct {
	Paths []FileIdentity `json:"paths" yaml:"paths"`
}

// DeadCodeItem is an unused file or an unused export
type DeadCodeItem struct {
	File   FileIdentity `json:"file" yaml:"file"`
	Symbol string       `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Kind   DeadCodeKind `json:"kind" yaml:"kind"`
	Line   int          `json:"line,omitempty" yaml:"line,omitempty"`
}

// LanguageShare is one language's slice of the codebase
type LanguageShare struct {
	Language   string  `json:"language" yaml:"language"`
	Files      int     `json:"files" yaml:"files"`
	Lines      int64   `json:"lines" yaml:"lines"`
	CodeLines  int64   `json:"code" yaml:"code"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Composition holds aggregate counts over the whole line-count report
type Composition struct {
	TotalFiles       int             `json:"total_files" yaml:"total_files"`
	TotalLines       int64           `json:"total_lines" yaml:"total_lines"`
	TotalCode        int64           `json:"total_code" yaml:"total_code"`
	TotalComment     int64           `json:"total_comment" yaml:"total_comment"`
	TotalBlank       int64           `json:"total_blank" yaml:"total_blank"`
	AverageFileLines float64         `json:"average_file_lines" yaml:"average_file_lines"`
	MedianFileLines  float64         `json:"median_file_lines" yaml:"median_file_lines"`
	ShareBasis       ShareBasis      `json:"share_basis" yaml:"share_basis"`
	Languages        []LanguageShare `json:"languages" yaml:"languages"`
}

// ShareBasis names the total that language percentages are shares of
type ShareBasis string

const (
	ShareOfCode  ShareBasis = "code"
	ShareOfLines ShareBasis = "lines"
	ShareOfFiles ShareBasis = "files"
)

// DataQuality counts cross-reference problems met while building a snapshot
type DataQuality struct {
	AmbiguousReferences  int        `json:"ambiguous_references" yaml:"ambiguous_references"`
	UnresolvedReferences int        `json:"unresolved_references" yaml:"unresolved_references"`
	FailedTools          []ToolKind `json:"failed_tools" yaml:"failed_tools"`
}

// Snapshot is the complete unified analysis result for one run.
// A Snapshot is never mutated after the aggregator returns it.
type Snapshot struct {
	Root             string              `json:"root" yaml:"root"`
	LargestFiles     []FileMetrics       `json:"largest_files" yaml:"largest_files"`
	ComplexFunctions []ComplexFunction   `json:"complex_functions" yaml:"complex_functions"`
	MaxLineOffenders []MaxLineOffender   `json:"max_line_offenders" yaml:"max_line_offenders"`
	Cycles           []Cycle             `json:"cycles" yaml:"cycles"`
	DeadCode         []DeadCodeItem      `json:"dead_code" yaml:"dead_code"`
	Composition      *Composition        `json:"composition,omitempty" yaml:"composition,omitempty"`
	Files            []FileMetrics       `json:"files" yaml:"files"`
	DataQuality      DataQuality         `json:"data_quality" yaml:"data_quality"`
	ToolVersions     map[ToolKind]string `json:"tool_versions" yaml:"tool_versions"`
	GeneratedAt      time.Time           `json:"generated_at" yaml:"generated_at"`
}

// FileDetail is the drill-down view of one file
type FileDetail struct {
	File             FileIdentity      `json:"file" yaml:"file"`
	Metrics          *FileMetrics      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	ComplexFunctions []ComplexFunction `json:"complex_functions" yaml:"complex_functions"`
	MaxLineOffenders []MaxLineOffender `json:"max_line_offenders" yaml:"max_line_offenders"`
	Cycles           []Cycle           `json:"cycles" yaml:"cycles"`
	DeadCode         []DeadCodeItem    `json:"dead_code" yaml:"dead_code"`
	GeneratedAt      time.Time         `json:"generated_at" yaml:"generated_at"`
}

// Identities returns every file identity referenced anywhere in the snapshot,
// deduplicated, in first-seen order
func (s *Snapshot) Identities() []FileIdentity {
	seen := make(map[FileIdentity]bool)
	var out []FileIdentity
	add := func(id FileIdentity) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, f := range s.Files {
		add(f.File)
	}
	for _, f := range s.LargestFiles {
		add(f.File)
	}
	for _, c := range s.ComplexFunctions {
		add(c.File)
	}
	for _, o := range s.MaxLineOffenders {
		add(o.File)
	}
	for _, c := range s.Cycles {
		for _, p := range c.Paths {
			add(p)
		}
	}
	for _, d := range s.DeadCode {
		add(d.File)
	}
	return out
}
