package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/leapscope/leapscope/internal/audit"
	"github.com/leapscope/leapscope/internal/history"
	"github.com/leapscope/leapscope/pkg/logger"
)

// ScanHandler serves scan run history and per-symbol decisions.
type ScanHandler struct {
	historyRepo *history.Repository
	auditRepo   *audit.Repository
	logger      *logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(historyRepo *history.Repository, auditRepo *audit.Repository, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		historyRepo: historyRepo,
		auditRepo:   auditRepo,
		logger:      log,
	}
}

// ListRuns returns the most recent scan runs.
// GET /api/scans?limit=20
func (h *ScanHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 20)

	runs, err := h.historyRepo.RecentRuns(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list scan runs")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scan runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun returns every conviction result recorded for one run.
// GET /api/scans/{id}
func (h *ScanHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	runID := vars["id"]

	results, err := h.historyRepo.RunResults(ctx, runID)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to load run results")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run results")
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"results": results,
		"count":   len(results),
	})
}

// GetSymbol returns the latest decision recorded for a symbol.
// GET /api/symbols/{symbol}
func (h *ScanHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	symbol := vars["symbol"]

	result, err := h.auditRepo.Latest(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load latest decision")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve decision")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "No decision recorded for symbol")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetSymbolHistory returns the decision records for a symbol over a date
// range. Defaults to the trailing 90 days.
// GET /api/symbols/{symbol}/history?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScanHandler) GetSymbolHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	symbol := vars["symbol"]

	to := time.Now()
	from := to.AddDate(0, 0, -90)
	var err error

	if s := r.URL.Query().Get("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
			return
		}
	}

	results, err := h.auditRepo.Range(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to load decision history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve decision history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"results": results,
		"count":   len(results),
	})
}

// Helper functions

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
