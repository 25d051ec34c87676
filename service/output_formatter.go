package service

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/version"
)

// textListLimit caps the rows printed per section in text output
const textListLimit = 20

// OutputFormatterImpl renders snapshots and file details
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// WriteSnapshot writes a snapshot in the specified format
func (f *OutputFormatterImpl) WriteSnapshot(snapshot *domain.Snapshot, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, snapshot)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, snapshot)
	case domain.OutputFormatText:
		return f.writeSnapshotText(snapshot, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteDetail writes a file detail in the specified format
func (f *OutputFormatterImpl) WriteDetail(detail *domain.FileDetail, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, detail)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, detail)
	case domain.OutputFormatText:
		return f.writeDetailText(detail, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *OutputFormatterImpl) writeSnapshotText(s *domain.Snapshot, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== jsboard Report ===\n")
	fmt.Fprintf(writer, "Root: %s\n", s.Root)
	fmt.Fprintf(writer, "Generated: %s\n", s.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(writer, "Version: %s\n\n", version.Get().Version)

	fmt.Fprintf(writer, "Tools:\n")
	for _, kind := range domain.AllToolKinds() {
		if v, ok := s.ToolVersions[kind]; ok {
			fmt.Fprintf(writer, "  %-10s %s\n", kind, v)
		} else {
			fmt.Fprintf(writer, "  %-10s [FAILED]\n", kind)
		}
	}
	fmt.Fprintf(writer, "\n")

	if c := s.Composition; c != nil {
		fmt.Fprintf(writer, "Composition:\n")
		fmt.Fprintf(writer, "  Files: %d\n", c.TotalFiles)
		fmt.Fprintf(writer, "  Lines: %d (code %d, comment %d, blank %d)\n",
			c.TotalLines, c.TotalCode, c.TotalComment, c.TotalBlank)
		fmt.Fprintf(writer, "  Average file: %.2f lines, median %.1f\n", c.AverageFileLines, c.MedianFileLines)
		for _, l := range c.Languages {
			fmt.Fprintf(writer, "  %-12s %5d files %8d lines %6.2f%%\n", l.Language, l.Files, l.Lines, l.Percentage)
		}
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "Largest Files:\n")
	if len(s.LargestFiles) == 0 {
		fmt.Fprintf(writer, "  (none)\n")
	}
	for i, m := range limit(s.LargestFiles) {
		fmt.Fprintf(writer, "  %2d. %6d  %s\n", i+1, m.Lines, m.File)
	}
	writeMore(writer, len(s.LargestFiles))

	fmt.Fprintf(writer, "\nComplex Functions:\n")
	if len(s.ComplexFunctions) == 0 {
		fmt.Fprintf(writer, "  (none)\n")
	}
	for _, c := range limit(s.ComplexFunctions) {
		fmt.Fprintf(writer, "  %s:%d  %s  %s\n", c.File, c.Line, metricText(c.Metric), c.RuleID)
	}
	writeMore(writer, len(s.ComplexFunctions))

	fmt.Fprintf(writer, "\nMax-Lines Offenders:\n")
	if len(s.MaxLineOffenders) == 0 {
		fmt.Fprintf(writer, "  (none)\n")
	}
	for _, o := range limit(s.MaxLineOffenders) {
		fmt.Fprintf(writer, "  %s  %s %d/%d\n", offenderLocation(o), o.Kind, o.Value, o.Limit)
	}
	writeMore(writer, len(s.MaxLineOffenders))

	fmt.Fprintf(writer, "\nCircular Dependencies:\n")
	if len(s.Cycles) == 0 {
		fmt.Fprintf(writer, "  (none)\n")
	}
	for _, c := range limit(s.Cycles) {
		fmt.Fprintf(writer, "  %s\n", cycleText(c))
	}
	writeMore(writer, len(s.Cycles))

	fmt.Fprintf(writer, "\nDead Code:\n")
	if len(s.DeadCode) == 0 {
		fmt.Fprintf(writer, "  (none)\n")
	}
	for _, d := range limit(s.DeadCode) {
		fmt.Fprintf(writer, "  %s\n", deadCodeText(d))
	}
	writeMore(writer, len(s.DeadCode))

	q := s.DataQuality
	if q.AmbiguousReferences > 0 || q.UnresolvedReferences > 0 || len(q.FailedTools) > 0 {
		fmt.Fprintf(writer, "\nData Quality:\n")
		fmt.Fprintf(writer, "  Ambiguous references: %d\n", q.AmbiguousReferences)
		fmt.Fprintf(writer, "  Unresolved references: %d\n", q.UnresolvedReferences)
		if len(q.FailedTools) > 0 {
			names := make([]string, len(q.FailedTools))
			for i, k := range q.FailedTools {
				names[i] = string(k)
			}
			sort.Strings(names)
			fmt.Fprintf(writer, "  Failed tools: %s\n", strings.Join(names, ", "))
		}
	}

	return nil
}

func (f *OutputFormatterImpl) writeDetailText(d *domain.FileDetail, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== %s ===\n\n", d.File)
	if m := d.Metrics; m != nil {
		fmt.Fprintf(writer, "Lines: %d (code %d, comment %d, blank %d)\n",
			m.Lines, m.CodeLines, m.CommentLines, m.BlankLines)
		if m.Language != "" {
			fmt.Fprintf(writer, "Language: %s\n", m.Language)
		}
		if m.FunctionCount != nil {
			fmt.Fprintf(writer, "Functions: %d", *m.FunctionCount)
			if m.AvgFunctionLength != nil && m.MaxFunctionLength != nil {
				fmt.Fprintf(writer, " (avg %.2f lines, max %d)", *m.AvgFunctionLength, *m.MaxFunctionLength)
			}
			fmt.Fprintf(writer, "\n")
		}
		if m.Complexity != nil {
			fmt.Fprintf(writer, "Complexity: %d\n", *m.Complexity)
		}
		if m.Dependencies != nil && m.Dependents != nil {
			fmt.Fprintf(writer, "Imports: %d, imported by: %d\n", *m.Dependencies, *m.Dependents)
		}
	} else {
		fmt.Fprintf(writer, "No line metrics (file not counted)\n")
	}

	for _, c := range d.ComplexFunctions {
		fmt.Fprintf(writer, "  line %d: %s (%s)\n", c.Line, c.Message, c.RuleID)
	}
	for _, o := range d.MaxLineOffenders {
		fmt.Fprintf(writer, "  %s: %d lines, limit %d\n", offenderLocation(o), o.Value, o.Limit)
	}
	for _, c := range d.Cycles {
		fmt.Fprintf(writer, "  cycle: %s\n", cycleText(c))
	}
	for _, dc := range d.DeadCode {
		fmt.Fprintf(writer, "  %s\n", deadCodeText(dc))
	}
	return nil
}

func limit[T any](items []T) []T {
	if len(items) > textListLimit {
		return items[:textListLimit]
	}
	return items
}

func writeMore(writer io.Writer, total int) {
	if total > textListLimit {
		fmt.Fprintf(writer, "  ... and %d more\n", total-textListLimit)
	}
}

func metricText(m *int) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *m)
}

func offenderLocation(o domain.MaxLineOffender) string {
	if o.Line > 0 {
		return fmt.Sprintf("%s:%d", o.File, o.Line)
	}
	return string(o.File)
}

func cycleText(c domain.Cycle) string {
	parts := make([]string, 0, len(c.Paths)+1)
	for _, p := range c.Paths {
		parts = append(parts, string(p))
	}
	if len(parts) > 0 {
		parts = append(parts, parts[0])
	}
	return strings.Join(parts, " -> ")
}

func deadCodeText(d domain.DeadCodeItem) string {
	if d.Kind == domain.DeadCodeKindFile {
		return fmt.Sprintf("%s [unused file]", d.File)
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d %s [unused export]", d.File, d.Line, d.Symbol)
	}
	return fmt.Sprintf("%s %s [unused export]", d.File, d.Symbol)
}
