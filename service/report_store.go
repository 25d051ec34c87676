package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/constants"
)

// rootKeyLength is the number of hex digits of the root hash used as
// directory name
const rootKeyLength = 12

// ReportStore persists tool reports and the snapshot of one analysis root.
// Its directory is disposable: nothing in it outlives the next cycle.
//
//	<base>/<sha256(root)[:12]>/
//	    lint.json deps.json deadcode.json linecount.json
//	    snapshot.json
//	    work/
type ReportStore struct {
	dir string
}

// NewReportStore scopes a store to root under base. An empty base means
// the system temp directory.
func NewReportStore(base, root string) (*ReportStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.NewStorageError("failed to resolve analysis root", err)
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), constants.ToolName)
	}
	return &ReportStore{dir: filepath.Join(base, RootKey(absRoot))}, nil
}

// RootKey derives the directory name for an absolute analysis root
func RootKey(absRoot string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(absRoot)))
	return hex.EncodeToString(sum[:])[:rootKeyLength]
}

// Dir returns the store directory
func (s *ReportStore) Dir() string {
	return s.dir
}

// WorkDir returns the per-cycle scratch directory
func (s *ReportStore) WorkDir() string {
	return filepath.Join(s.dir, constants.WorkDirName)
}

// PrepareWorkDir empties the scratch directory for a new cycle
func (s *ReportStore) PrepareWorkDir() (string, error) {
	work := s.WorkDir()
	if err := os.RemoveAll(work); err != nil {
		return "", domain.NewStorageError("failed to clear work directory", err)
	}
	if err := os.MkdirAll(work, 0o755); err != nil {
		return "", domain.NewStorageError("failed to create work directory", err)
	}
	return work, nil
}

// ReportPath returns where the report of kind is stored
func (s *ReportStore) ReportPath(kind domain.ToolKind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// SnapshotPath returns where the latest snapshot is stored
func (s *ReportStore) SnapshotPath() string {
	return filepath.Join(s.dir, constants.SnapshotFileName)
}

// SaveReport writes a tool report envelope
func (s *ReportStore) SaveReport(report *domain.ToolReport) error {
	if report == nil {
		return domain.NewStorageError("cannot save nil report", nil)
	}
	return s.writeJSON(s.ReportPath(report.Kind), report)
}

// LoadReport reads the stored report of kind
func (s *ReportStore) LoadReport(kind domain.ToolKind) (*domain.ToolReport, error) {
	var report domain.ToolReport
	if err := s.readJSON(s.ReportPath(kind), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// LoadReports reads every stored report. Missing reports are left nil.
func (s *ReportStore) LoadReports() (domain.ReportSet, error) {
	var set domain.ReportSet
	for _, kind := range domain.AllToolKinds() {
		report, err := s.LoadReport(kind)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return set, err
		}
		set.Put(report)
	}
	return set, nil
}

// SaveSnapshot writes the snapshot
func (s *ReportStore) SaveSnapshot(snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return domain.NewStorageError("cannot save nil snapshot", nil)
	}
	return s.writeJSON(s.SnapshotPath(), snapshot)
}

// LoadSnapshot reads the last saved snapshot. A store that never completed
// a cycle returns domain.ErrNotReady.
func (s *ReportStore) LoadSnapshot() (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := s.readJSON(s.SnapshotPath(), &snapshot)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotReady
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Reset removes the whole store directory
func (s *ReportStore) Reset() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return domain.NewStorageError("failed to reset report store", err)
	}
	return nil
}

// writeJSON writes through a temp file and rename so readers never see a
// partial document
func (s *ReportStore) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.NewStorageError("failed to create report directory", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.NewStorageError(fmt.Sprintf("failed to encode %s", filepath.Base(path)), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return domain.NewStorageError("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.NewStorageError("failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.NewStorageError("failed to close temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return domain.NewStorageError(fmt.Sprintf("failed to replace %s", filepath.Base(path)), err)
	}
	return nil
}

func (s *ReportStore) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewStorageError(fmt.Sprintf("corrupt %s", filepath.Base(path)), err)
	}
	return nil
}
