package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/hunterstats/core"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
)

// maxSampleBytes caps the size of an ingested collector sample.
const maxSampleBytes = 1 << 20

type handler struct {
	svc contract.StatsService
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Preview(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *handler) getReportText(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Preview(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}
	parts := rep.Parts
	if parts == nil {
		parts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"parts": parts})
}

func (h *handler) getHeroes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > contract.MaxTopUsers {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer between 1 and "+strconv.Itoa(contract.MaxTopUsers))
			return
		}
		limit = n
	}

	heroes, err := h.svc.Heroes(r.Context(), limit)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if heroes == nil {
		heroes = []schema.Hero{}
	}
	writeJSON(w, http.StatusOK, heroes)
}

func (h *handler) getUserStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	stats, err := h.svc.UserStats(r.Context(), name)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	if !stats.Found {
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "No user matches '"+name+"'")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) postSample(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSampleBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "SAMPLE_TOO_LARGE", "Sample exceeds "+strconv.Itoa(maxSampleBytes)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body")
		return
	}

	result, err := h.svc.IngestJSON(r.Context(), body)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// serviceError maps service failures onto the error envelope.
func (h *handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, records.ErrInvalidSample):
		writeError(w, http.StatusBadRequest, "INVALID_SAMPLE", err.Error())
	case errors.Is(err, core.ErrUnknownPool):
		writeError(w, http.StatusUnprocessableEntity, "UNKNOWN_POOL", err.Error())
	case errors.Is(err, core.ErrRunInProgress):
		writeError(w, http.StatusConflict, "RUN_IN_PROGRESS", err.Error())
	default:
		slog.Error("Request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}
