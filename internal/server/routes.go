package server

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/constants"
	"github.com/ludo-technologies/jsboard/service"
)

// SnapshotProvider returns the latest snapshot or domain.ErrNotReady
type SnapshotProvider interface {
	Snapshot() (*domain.Snapshot, error)
}

// DetailProvider resolves a file reference against the latest snapshot
type DetailProvider interface {
	Detail(ref string) (*domain.FileDetail, error)
}

// StatusProvider reports the refresh loop state
type StatusProvider interface {
	Status() service.RefreshStatus
}

// Subscriber hands out snapshot push channels
type Subscriber interface {
	Subscribe() (<-chan *domain.Snapshot, func())
}

// Deps are the collaborators behind the API routes
type Deps struct {
	Snapshots SnapshotProvider
	Details   DetailProvider
	Status    StatusProvider
	Push      Subscriber
	Logger    *log.Logger
}

// NewMux registers every route and wraps them with CORS
func NewMux(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	h := &handler{deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.RouteReport, h.report)
	mux.HandleFunc("GET "+constants.RouteFile, h.file)
	mux.HandleFunc("GET "+constants.RouteStatus, h.status)
	mux.HandleFunc("GET "+constants.RouteHealth, h.health)
	mux.HandleFunc("GET "+constants.RouteWS, h.push)
	return CORS(mux)
}
