package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/adapter"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
	intsync "github.com/NayandG07/LifeSync-AI-sub001/internal/sync"
)

// RecordStore is the record surface the API serves (the adapter).
type RecordStore interface {
	Create(ctx context.Context, userID string, rec record.Record) (record.Record, adapter.Source, error)
	ReadAll(ctx context.Context, userID string, kind record.Kind) ([]record.Record, adapter.Source, error)
	Delete(ctx context.Context, userID string, kind record.Kind, id string) (adapter.Source, error)
	DeleteAll(ctx context.Context, userID string, kind record.Kind) (adapter.Source, error)
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type recordsResponse struct {
	Records []record.Record `json:"records"`
	Source  adapter.Source  `json:"source"`
}

type recordResponse struct {
	Record record.Record  `json:"record"`
	Source adapter.Source `json:"source"`
}

func (h *handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Reporter.Statusz())
}

func (h *handlers) sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Reconciler.Run(r.Context(), h.deps.UserID)
	if errors.Is(err, intsync.ErrOffline) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backend unavailable"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) listRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	recs, source, err := h.deps.Records.ReadAll(r.Context(), h.deps.UserID, kind)
	if err != nil {
		h.logger.Error("list records failed", zap.Error(err), zap.String("kind", string(kind)))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read records"})
		return
	}
	if recs == nil {
		recs = []record.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Records: recs, Source: source})
}

func (h *handlers) createRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	var rec record.Record
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rec.Kind = kind
	stored, source, err := h.deps.Records.Create(r.Context(), h.deps.UserID, rec)
	if err != nil {
		// Validation errors are the only ones that reach here; store
		// failures were already absorbed by the fallback path.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Record: stored, Source: source})
}

func (h *handlers) deleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	source, err := h.deps.Records.Delete(r.Context(), h.deps.UserID, kind, r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not delete record"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"source": string(source)})
}

func (h *handlers) deleteAllRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	source, err := h.deps.Records.DeleteAll(r.Context(), h.deps.UserID, kind)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not clear records"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"source": string(source)})
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Profiles.Get(r.Context(), h.deps.UserID)
	if err != nil {
		// No fallback path for profiles: surface the failure.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) putProfile(w http.ResponseWriter, r *http.Request) {
	var p record.Profile
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p.UserID = h.deps.UserID
	if err := h.deps.Profiles.Save(r.Context(), p); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) notifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Center.Recent())
}

func (h *handlers) kind(w http.ResponseWriter, r *http.Request) (record.Kind, bool) {
	kind := record.Kind(r.PathValue("kind"))
	if !kind.Valid() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown record kind"})
		return "", false
	}
	return kind, true
}
