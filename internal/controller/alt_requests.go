package controller

import (
	"net/http"
	"strconv"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) CreateAltRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LivestreamID int64  `json:"livestream_id"`
		SnapshotID   string `json:"snapshot_id"`
		Creator      string `json:"creator"`
		AltNote      string `json:"alt_note"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	snapshotID, err := uuid.Parse(req.SnapshotID)
	if err != nil {
		h.badRequest(w, "invalid snapshot id")
		return
	}

	created, err := h.AltRequests.Create(r.Context(), req.LivestreamID, snapshotID, req.Creator, req.AltNote)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateAltRequestNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid request id")
		return
	}

	var req struct {
		Requester string `json:"requester"`
		AltNote   string `json:"alt_note"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	updated, err := h.AltRequests.UpdateNote(r.Context(), id, req.Requester, req.AltNote)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) AcceptAltRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid request id")
		return
	}

	var req struct {
		TargetUserID string `json:"target_user_id"`
		Other        bool   `json:"other"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	var target model.AltAssignee
	switch {
	case req.Other:
		target = model.AltAssigneeOther()
	case req.TargetUserID != "":
		target = model.AltAssigneeUser(req.TargetUserID)
	default:
		h.badRequest(w, "target_user_id or other is required")
		return
	}

	accepted, err := h.AltRequests.Accept(r.Context(), id, target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accepted)
}

func (h *Handler) RejectAltRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid request id")
		return
	}

	rejected, err := h.AltRequests.Reject(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rejected)
}

func (h *Handler) DeleteAltRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid request id")
		return
	}

	requester := r.URL.Query().Get("requester")
	if requester == "" {
		h.badRequest(w, "requester is required")
		return
	}

	if err := h.AltRequests.Delete(r.Context(), id, requester); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
