package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openlms/lms-service/internal/models"
	"go.uber.org/zap"
)

// BaseHandler carries the dependencies and response helpers shared by all
// API handlers.
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON writes data as a JSON body with the given status. A nil data
// value writes the status line and headers only.
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to write JSON response", zap.Error(err), zap.Int("status", status))
	}
}

// RespondError writes message in the API's error body shape.
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, models.ErrorResponse{Error: message})
}
