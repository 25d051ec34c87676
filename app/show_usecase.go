package app

import (
	"io"
	"sync/atomic"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/config"
	"github.com/ludo-technologies/jsboard/service"
)

// ShowConfig holds configuration for printing a persisted snapshot
type ShowConfig struct {
	Root   string
	Config *config.Config

	// File selects a single file's detail instead of the whole snapshot
	File string

	OutputFormat domain.OutputFormat
	OutputWriter io.Writer
}

// ShowUseCase prints the last persisted snapshot without running tools
type ShowUseCase struct {
	formatter *service.OutputFormatterImpl
}

// NewShowUseCase creates a show use case
func NewShowUseCase() *ShowUseCase {
	return &ShowUseCase{formatter: service.NewOutputFormatter()}
}

type storedSnapshot struct {
	snapshot atomic.Pointer[domain.Snapshot]
}

func (s *storedSnapshot) Latest() *domain.Snapshot {
	return s.snapshot.Load()
}

// Execute writes the snapshot, or one file's detail. It returns
// domain.ErrNotReady when no snapshot was persisted for the root and
// domain.ErrNotFound for an untracked file.
func (uc *ShowUseCase) Execute(cfg ShowConfig) error {
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = domain.OutputFormat(cfg.Config.Output.Format)
	}
	root, err := ResolveRoot(cfg.Config, cfg.Root)
	if err != nil {
		return domain.NewInvalidInputError("invalid analysis root", err)
	}
	store, err := service.NewReportStore(cfg.Config.Report.Directory, root)
	if err != nil {
		return err
	}
	snapshot, err := store.LoadSnapshot()
	if err != nil {
		return err
	}

	if cfg.File == "" {
		return uc.formatter.WriteSnapshot(snapshot, cfg.OutputFormat, cfg.OutputWriter)
	}

	source := &storedSnapshot{}
	source.snapshot.Store(snapshot)
	details, err := service.NewDetailService(source, 1)
	if err != nil {
		return err
	}
	detail, err := details.Detail(cfg.File)
	if err != nil {
		return err
	}
	return uc.formatter.WriteDetail(detail, cfg.OutputFormat, cfg.OutputWriter)
}
