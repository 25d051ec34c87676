package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ludo-technologies/jsboard/domain"
	"github.com/ludo-technologies/jsboard/internal/version"
)

type handler struct {
	deps Deps
}

type healthBody struct {
	Status string       `json:"status"`
	Build  version.Info `json:"build"`
}

type statusBody struct {
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.deps.Snapshots.Snapshot()
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) file(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("path"))
	if ref == "" {
		h.writeJSON(w, http.StatusBadRequest, statusBody{Status: "bad_request", Message: "path is required"})
		return
	}
	detail, err := h.deps.Details.Detail(ref)
	if err != nil {
		h.writeError(w, err, ref)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.deps.Status.Status())
}

// health answers as long as the process serves requests, ready or not
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: version.Get()})
}

func (h *handler) writeError(w http.ResponseWriter, err error, ref string) {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		h.writeJSON(w, http.StatusServiceUnavailable, statusBody{Status: "not_ready"})
	case errors.Is(err, domain.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, statusBody{Status: "not_found", Path: ref})
	default:
		h.deps.Logger.Error("request failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, statusBody{Status: "error", Message: err.Error()})
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.deps.Logger.Debug("cannot write response", "err", err)
	}
}
