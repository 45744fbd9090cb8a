// Package middleware provides HTTP middleware for the InterveneR API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/roadwise-ai/intervener/internal/observability"
)

// RequestLogger logs every request and carries the chi request id into the
// logger context so handler logs correlate with access logs.
func RequestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = observability.ContextWithRequestID(ctx, reqID)
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			logger.WithContext(ctx).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// CORS returns a middleware allowing the given origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					for _, o := range allowedOrigins {
						if strings.EqualFold(o, origin) {
							w.Header().Set("Access-Control-Allow-Origin", origin)
							break
						}
					}
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthConfig holds API-key authentication settings.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// Auth returns an API-key authentication middleware. Keys are accepted from
// the X-API-Key header or an Authorization bearer token.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				if parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					key = parts[1]
				}
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or missing api key"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
