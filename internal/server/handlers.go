package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"omniflow/internal/app"
	"omniflow/internal/automation"
	"omniflow/internal/catalog"
	"omniflow/internal/script"
)

const maxBodyBytes = 1 << 20

// Producer runs a production. *app.Orchestrator satisfies it.
type Producer interface {
	Produce(ctx context.Context, req app.Request) (*app.Production, error)
}

type Handler struct {
	producer  Producer
	outputDir string
}

// NewHandler returns the API handlers. producer may be nil, in which
// case production requests answer 503.
func NewHandler(producer Producer, outputDir string) *Handler {
	return &Handler{producer: producer, outputDir: outputDir}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

// writeError maps unknown keys and missing projects to 404 and anything
// else to the given status.
func writeError(w http.ResponseWriter, status int, err error) {
	var unknown *catalog.UnknownKeyError
	if errors.As(err, &unknown) || errors.Is(err, app.ErrProjectNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListChannels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"channels": catalog.Channels(),
		"expanded": catalog.ExpandedChannels(),
	})
}

// GetChannel looks the key up in the base presets, then the expanded
// templates.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if ch, err := catalog.LookupChannel(key); err == nil {
		writeJSON(w, http.StatusOK, ch)
		return
	}
	if ch, err := catalog.LookupExpandedChannel(key); err == nil {
		writeJSON(w, http.StatusOK, ch)
		return
	}

	valid := append(catalog.ChannelKeys(), catalog.ExpandedChannelKeys()...)
	slices.Sort(valid)
	writeError(w, http.StatusNotFound, &catalog.UnknownKeyError{Kind: "Channel template", Key: key, Valid: valid})
}

func (h *Handler) ListStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Styles())
}

type suggestRequest struct {
	Script string `json:"script"`
}

type suggestResponse struct {
	Style   string        `json:"style"`
	Details catalog.Style `json:"details"`
}

func (h *Handler) SuggestStyle(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Script == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "script is required"})
		return
	}

	key := catalog.SuggestStyle(req.Script)
	style, err := catalog.LookupStyle(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Style: key, Details: style})
}

func (h *Handler) GospelPlan(w http.ResponseWriter, r *http.Request) {
	var req script.GospelRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := script.BuildGospelPlan(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) NichePlan(w http.ResponseWriter, r *http.Request) {
	var req script.NicheRequest
	if !decode(w, r, &req) {
		return
	}
	req.Niche = chi.URLParam(r, "niche")

	plan, err := script.GenerateNiche(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type productionError struct {
	Error      string          `json:"error"`
	Production *app.Production `json:"production,omitempty"`
}

func (h *Handler) CreateProduction(w http.ResponseWriter, r *http.Request) {
	if h.producer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "production pipeline not configured"})
		return
	}

	var req app.Request
	if !decode(w, r, &req) {
		return
	}

	res, err := h.producer.Produce(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, productionError{Error: err.Error(), Production: res})
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) GetProduction(w http.ResponseWriter, r *http.Request) {
	dir, err := app.FindProject(h.outputDir, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	meta, err := app.Status(dir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (h *Handler) GetAutomation(w http.ResponseWriter, r *http.Request) {
	tmpl, err := automation.Lookup(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}
