package controller

import (
	"net/http"
	"strconv"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date"` // "2006-01-02"
		ChannelID string `json:"channel_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	date, err := h.parseDate(req.Date)
	if err != nil {
		h.badRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}

	ls, err := h.Livestreams.Materialize(r.Context(), date, req.ChannelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ls)
}

func (h *Handler) Synchronize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From      string `json:"from"`
		To        string `json:"to"`
		ChannelID string `json:"channel_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	from, err := h.parseDate(req.From)
	if err != nil {
		h.badRequest(w, "invalid from date, want YYYY-MM-DD")
		return
	}
	to, err := h.parseDate(req.To)
	if err != nil {
		h.badRequest(w, "invalid to date, want YYYY-MM-DD")
		return
	}

	updated, err := h.Livestreams.Synchronize(r.Context(), from, to, req.ChannelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated_count": updated})
}

func (h *Handler) GetLivestream(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid livestream id")
		return
	}

	ls, err := h.Livestreams.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *Handler) SetFixed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid livestream id")
		return
	}

	var req struct {
		Fixed bool `json:"fixed"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	ls, err := h.Livestreams.SetFixed(r.Context(), id, req.Fixed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *Handler) AddSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid livestream id")
		return
	}

	var req struct {
		PeriodID int64   `json:"period_id"`
		Assignee string  `json:"assignee"`
		Income   float64 `json:"income"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	ls, err := h.Livestreams.AddSnapshot(r.Context(), id, req.PeriodID, req.Assignee, req.Income)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *Handler) UpdateSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid livestream id")
		return
	}
	snapshotID, err := uuid.Parse(chi.URLParam(r, "snapshotID"))
	if err != nil {
		h.badRequest(w, "invalid snapshot id")
		return
	}

	var upd service.SnapshotUpdate
	if err := decodeBody(r, &upd); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	ls, err := h.Livestreams.UpdateSnapshot(r.Context(), id, snapshotID, upd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *Handler) RemoveSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid livestream id")
		return
	}
	snapshotID, err := uuid.Parse(chi.URLParam(r, "snapshotID"))
	if err != nil {
		h.badRequest(w, "invalid snapshot id")
		return
	}

	if err := h.Livestreams.RemoveSnapshot(r.Context(), id, snapshotID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
