// Package handlers provides HTTP handlers for the InterveneR API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roadwise-ai/intervener/internal/cache"
	"github.com/roadwise-ai/intervener/internal/explain"
	"github.com/roadwise-ai/intervener/internal/observability"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

// RecommendHandler serves intervention recommendations.
type RecommendHandler struct {
	logger   *observability.Logger
	engine   *retrieval.Engine
	cache    cache.Client
	cacheTTL time.Duration
	defaults Defaults
}

// Defaults holds request defaults applied when the caller omits a field.
type Defaults struct {
	TopK     int
	MinScore float64
}

// NewRecommendHandler creates a recommendation handler. A nil cache disables
// response caching.
func NewRecommendHandler(logger *observability.Logger, engine *retrieval.Engine, c cache.Client, cacheTTL time.Duration, defaults Defaults) *RecommendHandler {
	if defaults.TopK < 1 {
		defaults.TopK = retrieval.DefaultTopK
	}
	if defaults.MinScore == 0 {
		defaults.MinScore = retrieval.DefaultMinScore
	}
	return &RecommendHandler{
		logger:   logger,
		engine:   engine,
		cache:    c,
		cacheTTL: cacheTTL,
		defaults: defaults,
	}
}

// RecommendRequestDTO is the API request for recommendations.
type RecommendRequestDTO struct {
	Query       string   `json:"query"`
	RoadType    string   `json:"road_type,omitempty"`
	Environment string   `json:"environment,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	MinScore    *float64 `json:"min_score,omitempty"`
}

// RecommendResponseDTO is the API response for a confident result.
type RecommendResponseDTO struct {
	Status              string                   `json:"status"`
	RequestID           string                   `json:"request_id"`
	Query               QuerySummaryDTO          `json:"query"`
	Recommendations     []explain.Recommendation `json:"recommendations"`
	Total               int                      `json:"total_recommendations"`
	UsedDefaultRoadType bool                     `json:"used_default_road_type"`
	LatencyMs           int64                    `json:"latency_ms"`
}

// QuerySummaryDTO echoes the interpreted query context.
type QuerySummaryDTO struct {
	Issue       string `json:"issue"`
	RoadType    string `json:"road_type"`
	Environment string `json:"environment"`
}

// Recommend handles POST /api/v1/recommendations.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	log := h.logger.WithContext(ctx)

	var dto RecommendRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	req := retrieval.Request{
		Query:       dto.Query,
		RoadType:    dto.RoadType,
		Environment: dto.Environment,
		TopK:        dto.TopK,
		MinScore:    h.defaults.MinScore,
	}
	if req.TopK == 0 {
		req.TopK = h.defaults.TopK
	}
	if dto.MinScore != nil {
		req.MinScore = *dto.MinScore
	}

	// Serve from cache when an identical request was answered recently.
	cacheKey := cache.RequestKey(req.Query, req.RoadType, req.Environment, req.TopK, req.MinScore)
	if h.cache != nil {
		if data, err := h.cache.Get(ctx, cacheKey); err == nil {
			log.Debug().Str("cache_key", cacheKey).Msg("recommendation cache hit")
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	result, err := h.engine.RetrieveAndRank(req)
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrEmptyQuery):
			writeError(w, http.StatusUnprocessableEntity, "empty_query", "query has no scorable terms; describe the issue in more detail")
		case errors.Is(err, retrieval.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		default:
			log.Error().Err(err).Msg("retrieval failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "retrieval failed")
		}
		return
	}

	log.Info().
		Str("query", dto.Query).
		Bool("confident", result.Confident).
		Float64("top_score", result.TopScore()).
		Int("candidates", len(result.Candidates)).
		Msg("recommendation query")

	var payload any
	if !result.Confident {
		payload = explain.Fallback(dto.Query)
	} else {
		payload = RecommendResponseDTO{
			Status:    "success",
			RequestID: uuid.New().String(),
			Query: QuerySummaryDTO{
				Issue:       dto.Query,
				RoadType:    roadTypeLabel(dto.RoadType, result.UsedDefaultRoadType),
				Environment: environmentLabel(dto.Environment),
			},
			Recommendations:     explain.FormatResult(result),
			Total:               len(result.Candidates),
			UsedDefaultRoadType: result.UsedDefaultRoadType,
			LatencyMs:           time.Since(start).Milliseconds(),
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		writeError(w, http.StatusInternalServerError, "internal_error", "encode response")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, data, h.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("cache recommendation response")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func roadTypeLabel(roadType string, usedDefault bool) string {
	if usedDefault {
		return retrieval.DefaultRoadType + " (default)"
	}
	return roadType
}

func environmentLabel(environment string) string {
	if environment == "" {
		return "general"
	}
	return environment
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
