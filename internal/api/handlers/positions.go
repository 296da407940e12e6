package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leapscope/leapscope/internal/portfolio"
	"github.com/leapscope/leapscope/pkg/logger"
)

// PositionHandler serves the open LEAPS positions under management.
type PositionHandler struct {
	positionRepo *portfolio.Repository
	logger       *logger.Logger
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(positionRepo *portfolio.Repository, log *logger.Logger) *PositionHandler {
	return &PositionHandler{
		positionRepo: positionRepo,
		logger:       log,
	}
}

// ListOpen returns every open position.
// GET /api/positions
func (h *PositionHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	positions, err := h.positionRepo.OpenPositions(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list open positions")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve positions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// Get returns one position by id.
// GET /api/positions/{id}
func (h *PositionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	id := vars["id"]

	position, err := h.positionRepo.GetPosition(ctx, id)
	if err != nil {
		h.logger.WithError(err).WithField("position_id", id).Error("Failed to load position")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve position")
		return
	}
	if position == nil {
		respondError(w, http.StatusNotFound, "Position not found")
		return
	}

	respondJSON(w, http.StatusOK, position)
}
