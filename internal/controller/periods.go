package controller

import (
	"net/http"
	"strconv"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/go-chi/chi/v5"
)

type periodRequest struct {
	ChannelID string          `json:"channel_id"`
	Role      model.Role      `json:"role"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	period, err := h.Schedule.CreatePeriod(r.Context(), req.ChannelID, req.Role, req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, period)
}

func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid period id")
		return
	}

	var req periodRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	period, err := h.Schedule.UpdatePeriod(r.Context(), id, req.Role, req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, period)
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid period id")
		return
	}

	if err := h.Schedule.DeletePeriod(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		h.badRequest(w, "channel_id is required")
		return
	}

	periods, err := h.Schedule.ListByChannel(r.Context(), channelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}
