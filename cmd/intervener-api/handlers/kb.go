package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roadwise-ai/intervener/internal/cache"
	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/observability"
)

// RecordSource reads a fresh record set from the configured KB source.
type RecordSource func() ([]kb.Record, error)

// KBHandler serves knowledge-base lookups and administration.
type KBHandler struct {
	logger *observability.Logger
	store  *kb.Store
	source RecordSource
	cache  cache.Client
}

// NewKBHandler creates a knowledge-base handler. source may be nil, which
// disables reloading.
func NewKBHandler(logger *observability.Logger, store *kb.Store, source RecordSource, c cache.Client) *KBHandler {
	return &KBHandler{
		logger: logger,
		store:  store,
		source: source,
		cache:  c,
	}
}

// Stats handles GET /api/v1/kb/stats.
func (h *KBHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// InterventionDTO is the API shape of a knowledge-base record.
type InterventionDTO struct {
	ID              int      `json:"id"`
	IssueKeywords   []string `json:"issue_keywords"`
	Intervention    string   `json:"intervention"`
	Reference       string   `json:"reference"`
	Rationale       string   `json:"rationale"`
	RoadTypes       []string `json:"road_types"`
	EnvironmentTags []string `json:"environment_tags"`
	Priority        string   `json:"priority"`
}

// Get handles GET /api/v1/kb/interventions/{id}.
func (h *KBHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "intervention id must be an integer")
		return
	}

	rec, err := h.store.Get(id)
	if errors.Is(err, kb.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no intervention with that id")
		return
	}

	writeJSON(w, http.StatusOK, toInterventionDTO(rec))
}

// List handles GET /api/v1/kb/interventions.
func (h *KBHandler) List(w http.ResponseWriter, r *http.Request) {
	records := h.store.All()
	dtos := make([]InterventionDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toInterventionDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Reload handles POST /api/v1/kb/reload: re-reads the configured source and
// swaps the whole collection atomically. On failure the current snapshot
// stays in place.
func (h *KBHandler) Reload(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithContext(r.Context())

	if h.source == nil {
		writeError(w, http.StatusNotImplemented, "reload_disabled", "no reloadable source configured")
		return
	}

	records, err := h.source()
	if err != nil {
		log.Error().Err(err).Msg("read kb source")
		writeError(w, http.StatusUnprocessableEntity, "load_error", err.Error())
		return
	}
	if err := h.store.Reload(records); err != nil {
		log.Error().Err(err).Msg("reload kb")
		writeError(w, http.StatusUnprocessableEntity, "load_error", err.Error())
		return
	}

	// Cached responses may now disagree with the new snapshot.
	if h.cache != nil {
		if err := h.cache.DeleteByPrefix(r.Context(), "rec:"); err != nil {
			log.Warn().Err(err).Msg("invalidate response cache")
		}
	}

	log.Info().Int("records", h.store.Len()).Msg("knowledge base reloaded")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reloaded",
		"records": h.store.Len(),
	})
}

func toInterventionDTO(rec kb.Record) InterventionDTO {
	return InterventionDTO{
		ID:              rec.ID,
		IssueKeywords:   rec.IssueKeywords,
		Intervention:    rec.Intervention,
		Reference:       rec.Reference,
		Rationale:       rec.Rationale,
		RoadTypes:       rec.RoadTypes,
		EnvironmentTags: rec.EnvironmentTags,
		Priority:        string(rec.Priority),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
