package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/leapscope/leapscope/internal/api/handlers"
	"github.com/leapscope/leapscope/pkg/logger"
)

// NewRouter creates and configures the HTTP router. Every endpoint is
// read-only except alert acknowledgement.
func NewRouter(
	scanHandler *handlers.ScanHandler,
	positionHandler *handlers.PositionHandler,
	alertHandler *handlers.AlertHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints
	api.HandleFunc("/scans", scanHandler.ListRuns).Methods("GET")
	api.HandleFunc("/scans/{id}", scanHandler.GetRun).Methods("GET")
	api.HandleFunc("/symbols/{symbol}", scanHandler.GetSymbol).Methods("GET")
	api.HandleFunc("/symbols/{symbol}/history", scanHandler.GetSymbolHistory).Methods("GET")

	// Position endpoints
	api.HandleFunc("/positions", positionHandler.ListOpen).Methods("GET")
	api.HandleFunc("/positions/{id}", positionHandler.Get).Methods("GET")

	// Alert endpoints
	api.HandleFunc("/alerts", alertHandler.ListUnacknowledged).Methods("GET")
	api.HandleFunc("/alerts/{id}/ack", alertHandler.Acknowledge).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "leapscope-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
