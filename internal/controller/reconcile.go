package controller

import (
	"net/http"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/service"
)

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string              `json:"date"` // "2006-01-02"
		ChannelID string              `json:"channel_id"`
		Ledger    []service.LedgerRow `json:"ledger"`
		Source    []service.SourceRow `json:"source"`
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

	result, err := h.Reconciler.Reconcile(r.Context(), date, req.ChannelID, req.Ledger, req.Source)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
