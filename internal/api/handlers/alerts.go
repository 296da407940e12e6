package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leapscope/leapscope/internal/alerts"
	"github.com/leapscope/leapscope/pkg/logger"
)

// AlertHandler serves stored alerts and acknowledgements.
type AlertHandler struct {
	alertRepo *alerts.Repository
	logger    *logger.Logger
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alertRepo *alerts.Repository, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alertRepo: alertRepo,
		logger:    log,
	}
}

// ListUnacknowledged returns alerts that have not been acknowledged yet.
// GET /api/alerts?limit=50
func (h *AlertHandler) ListUnacknowledged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 50)

	list, err := h.alertRepo.Unacknowledged(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list alerts")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": list,
		"count":  len(list),
	})
}

// Acknowledge marks one alert as seen.
// POST /api/alerts/{id}/ack
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	id := vars["id"]

	if err := h.alertRepo.Acknowledge(ctx, id); err != nil {
		h.logger.WithError(err).WithField("alert_id", id).Error("Failed to acknowledge alert")
		respondError(w, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "acknowledged",
		"id":     id,
	})
}
