package service

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/identity"
)

// DefaultDetailCacheSize bounds cached file details per snapshot
const DefaultDetailCacheSize = 256

// SnapshotSource provides the latest published snapshot
type SnapshotSource interface {
	Latest() *domain.Snapshot
}

// DetailService answers per-file drill-down queries against the latest
// snapshot. Results are cached until a newer snapshot is published.
type DetailService struct {
	source SnapshotSource

	mu        sync.Mutex
	cache     *lru.Cache[string, *domain.FileDetail]
	cachedFor *domain.Snapshot
	resolver  *identity.Resolver
}

// NewDetailService creates a detail service over source
func NewDetailService(source SnapshotSource, cacheSize int) (*DetailService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultDetailCacheSize
	}
	cache, err := lru.New[string, *domain.FileDetail](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail cache: %w", err)
	}
	return &DetailService{source: source, cache: cache}, nil
}

// Detail returns everything the latest snapshot knows about the file ref
// denotes. ref may be absolute, root-relative or a path suffix. Before the
// first snapshot it returns domain.ErrNotReady; for untracked or ambiguous
// references domain.ErrNotFound.
func (d *DetailService) Detail(ref string) (*domain.FileDetail, error) {
	snapshot := d.source.Latest()
	if snapshot == nil {
		return nil, domain.ErrNotReady
	}

	d.mu.Lock()
	if d.cachedFor != snapshot {
		d.cache.Purge()
		d.cachedFor = snapshot
		d.resolver = identity.NewResolver(snapshot.Root, snapshot.Identities())
	}
	res := d.resolver
	d.mu.Unlock()

	if detail, ok := d.cache.Get(ref); ok {
		return detail, nil
	}

	id, outcome := res.Resolve(ref)
	if !outcome.Matched() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}

	detail := BuildFileDetail(snapshot, id)

	// A newer snapshot may have been published meanwhile; only cache
	// results for the one still current
	d.mu.Lock()
	if d.cachedFor == snapshot {
		d.cache.Add(ref, detail)
	}
	d.mu.Unlock()
	return detail, nil
}

// BuildFileDetail collects every snapshot entry about id
func BuildFileDetail(snapshot *domain.Snapshot, id domain.FileIdentity) *domain.FileDetail {
	detail := &domain.FileDetail{
		File:             id,
		ComplexFunctions: []domain.ComplexFunction{},
		MaxLineOffenders: []domain.MaxLineOffender{},
		Cycles:           []domain.Cycle{},
		DeadCode:         []domain.DeadCodeItem{},
		GeneratedAt:      snapshot.GeneratedAt,
	}
	for i := range snapshot.Files {
		if snapshot.Files[i].File == id {
			m := snapshot.Files[i]
			detail.Metrics = &m
			break
		}
	}
	for _, c := range snapshot.ComplexFunctions {
		if c.File == id {
			detail.ComplexFunctions = append(detail.ComplexFunctions, c)
		}
	}
	for _, o := range snapshot.MaxLineOffenders {
		if o.File == id {
			detail.MaxLineOffenders = append(detail.MaxLineOffenders, o)
		}
	}
	for _, c := range snapshot.Cycles {
		for _, p := range c.Paths {
			if p == id {
				detail.Cycles = append(detail.Cycles, c)
				break
			}
		}
	}
	for _, dc := range snapshot.DeadCode {
		if dc.File == id {
			detail.DeadCode = append(detail.DeadCode, dc)
		}
	}
	return detail
}
