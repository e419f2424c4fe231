package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
	"go.uber.org/zap"
)

// Handler holds the services the HTTP layer delegates to.
type Handler struct {
	Schedule    *service.ScheduleService
	Livestreams *service.LivestreamService
	AltRequests *service.AltRequestService
	Reconciler  *service.ReconcileService
	Salary      *service.SalaryService
	Location    *time.Location
	Logger      *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the domain error taxonomy to HTTP status codes.
// Unexpected failures are logged with context and surfaced generically.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case model.IsClientError(err):
		status := http.StatusConflict
		if errors.Is(err, model.ErrValidation) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
	default:
		h.Logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// parseDate parses a "2006-01-02" date in the service's local timezone.
func (h *Handler) parseDate(s string) (time.Time, error) {
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
