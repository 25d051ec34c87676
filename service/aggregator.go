package service

import (
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/extract"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// AggregatorOptions configures snapshot construction
type AggregatorOptions struct {
	// TopN caps the largest-files ranking (0 = domain.DefaultTopN)
	TopN int

	// Thresholds fill in limits that a lint message does not state
	Thresholds domain.Thresholds

	// Clock stamps generatedAt; nil means time.Now
	Clock func() time.Time

	Logger *log.Logger
}

// Aggregator merges tool reports into snapshots. It never fails: a missing
// or failed report only empties the slices it feeds.
type Aggregator struct {
	root       string
	topN       int
	thresholds domain.Thresholds
	clock      func() time.Time
	logger     *log.Logger
}

// NewAggregator creates an aggregator for an absolute analysis root
func NewAggregator(root string, opts AggregatorOptions) *Aggregator {
	if opts.TopN <= 0 {
		opts.TopN = domain.DefaultTopN
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Aggregator{
		root:       root,
		topN:       opts.TopN,
		thresholds: opts.Thresholds,
		clock:      opts.Clock,
		logger:     orDiscard(opts.Logger),
	}
}

// Aggregate builds a new snapshot from reports. The result shares no
// memory with any earlier snapshot.
func (a *Aggregator) Aggregate(reports domain.ReportSet) *domain.Snapshot {
	lint := usable(reports.Lint)
	deps := usable(reports.DepGraph)
	dead := usable(reports.DeadCode)
	lines := usable(reports.LineCount)

	var (
		lintReport *domain.LintReport
		depReport  *domain.DepGraphReport
		deadReport *domain.DeadCodeReport
		lineReport *domain.LineCountReport
	)
	if lint != nil {
		lintReport = lint.Lint
	}
	if deps != nil {
		depReport = deps.DepGraph
	}
	if dead != nil {
		deadReport = dead.DeadCode
	}
	if lines != nil {
		lineReport = lines.LineCount
	}

	res := identity.NewResolver(a.root, candidates(lineReport, reports.Files))

	var (
		g           errgroup.Group
		files       []domain.FileMetrics
		complexFns  []domain.ComplexFunction
		offenders   []domain.MaxLineOffender
		cycles      []domain.Cycle
		deadCode    []domain.DeadCodeItem
		composition *domain.Composition
	)
	g.Go(func() error {
		files = extract.Files(lineReport, depReport, res)
		return nil
	})
	g.Go(func() error {
		complexFns, offenders = extract.Violations(lintReport, res, a.thresholds)
		return nil
	})
	g.Go(func() error {
		cycles = extract.Cycles(depReport, res)
		return nil
	})
	g.Go(func() error {
		deadCode = extract.DeadCode(deadReport, res)
		return nil
	})
	g.Go(func() error {
		composition = extract.Composition(lineReport)
		return nil
	})
	_ = g.Wait()

	stats := res.Stats()
	snapshot := &domain.Snapshot{
		Root:             a.root,
		LargestFiles:     nonNil(extract.RankLargest(lineMetricsOnly(files), a.topN)),
		ComplexFunctions: nonNil(complexFns),
		MaxLineOffenders: nonNil(offenders),
		Cycles:           nonNil(cycles),
		DeadCode:         nonNil(deadCode),
		Composition:      composition,
		Files:            nonNil(files),
		DataQuality: domain.DataQuality{
			AmbiguousReferences:  stats.Ambiguous,
			UnresolvedReferences: stats.Unresolved,
			FailedTools:          failedTools(reports),
		},
		ToolVersions: toolVersions(reports),
		GeneratedAt:  a.clock().UTC(),
	}

	if stats.Ambiguous > 0 {
		a.logger.Debug("dropped ambiguous references", "count", stats.Ambiguous)
	}
	return snapshot
}

// lineMetricsOnly drops the dependency-graph join so the ranking depends on
// the line counter alone
func lineMetricsOnly(files []domain.FileMetrics) []domain.FileMetrics {
	out := make([]domain.FileMetrics, len(files))
	for i, f := range files {
		f.Dependencies = nil
		f.Dependents = nil
		out[i] = f
	}
	return out
}

// usable returns r when it carries data, else nil
func usable(r *domain.ToolReport) *domain.ToolReport {
	if r.Usable() {
		return r
	}
	return nil
}

// candidates lists every file the resolver may join against
func candidates(lc *domain.LineCountReport, files []string) []domain.FileIdentity {
	var out []domain.FileIdentity
	if lc != nil {
		out = make([]domain.FileIdentity, 0, len(lc.Files)+len(files))
		for _, e := range lc.Files {
			out = append(out, domain.FileIdentity(e.Path))
		}
	}
	for _, f := range files {
		out = append(out, domain.FileIdentity(f))
	}
	return out
}

// failedTools lists, in stable order, every kind without a usable report
func failedTools(reports domain.ReportSet) []domain.ToolKind {
	failed := []domain.ToolKind{}
	for _, kind := range domain.AllToolKinds() {
		if !reports.Get(kind).Usable() {
			failed = append(failed, kind)
		}
	}
	return failed
}

func toolVersions(reports domain.ReportSet) map[domain.ToolKind]string {
	versions := make(map[domain.ToolKind]string)
	for _, kind := range domain.AllToolKinds() {
		if r := reports.Get(kind); r.Usable() {
			versions[kind] = r.Version
		}
	}
	return versions
}

// nonNil keeps empty slices encoding as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
