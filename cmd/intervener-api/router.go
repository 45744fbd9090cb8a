// Package main provides the API router setup.
package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/roadwise-ai/intervener/cmd/intervener-api/handlers"
	"github.com/roadwise-ai/intervener/cmd/intervener-api/middleware"
	"github.com/roadwise-ai/intervener/internal/cache"
	"github.com/roadwise-ai/intervener/internal/config"
	"github.com/roadwise-ai/intervener/internal/kb"
	"github.com/roadwise-ai/intervener/internal/observability"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, store *kb.Store, source handlers.RecordSource, respCache cache.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"healthy","service":"intervener","kb_size":%d}`, store.Len())
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if store.Len() == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"empty_knowledge_base"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	engine := retrieval.NewEngine(store, retrieval.ScoringConfig{
		RoadTypeBoost:    cfg.Retrieval.RoadTypeBoost,
		EnvBoostMax:      cfg.Retrieval.EnvBoostMax,
		SimilarityCutoff: cfg.Retrieval.SimilarityCutoff,
	})

	recommendHandler := handlers.NewRecommendHandler(logger, engine, respCache, cfg.Cache.TTL, handlers.Defaults{
		TopK:     cfg.Retrieval.DefaultTopK,
		MinScore: cfg.Retrieval.MinScore,
	})
	kbHandler := handlers.NewKBHandler(logger, store, source, respCache)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			APIKey:  cfg.Auth.APIKey,
		}))

		r.Post("/recommendations", recommendHandler.Recommend)

		r.Route("/kb", func(r chi.Router) {
			r.Get("/stats", kbHandler.Stats)
			r.Get("/interventions", kbHandler.List)
			r.Get("/interventions/{id}", kbHandler.Get)
			r.Post("/reload", kbHandler.Reload)
		})
	})

	return r
}
