package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dncmaduro/candy-cal-be-sub000/internal/model"
	"github.com/go-chi/chi/v5"
)

type tierRequest struct {
	MinIncome       float64 `json:"min_income"`
	MaxIncome       float64 `json:"max_income"`
	SalaryPerHour   float64 `json:"salary_per_hour"`
	BonusPercentage float64 `json:"bonus_percentage"`
}

func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.Salary.ListTiers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func (h *Handler) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	tier, err := h.Salary.CreateTier(r.Context(), &model.PerformanceTier{
		MinIncome:       req.MinIncome,
		MaxIncome:       req.MaxIncome,
		SalaryPerHour:   req.SalaryPerHour,
		BonusPercentage: req.BonusPercentage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tier)
}

func (h *Handler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid tier id")
		return
	}

	var req tierRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	tier, err := h.Salary.UpdateTier(r.Context(), &model.PerformanceTier{
		ID:              id,
		MinIncome:       req.MinIncome,
		MaxIncome:       req.MaxIncome,
		SalaryPerHour:   req.SalaryPerHour,
		BonusPercentage: req.BonusPercentage,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tier)
}

func (h *Handler) DeleteTier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid tier id")
		return
	}

	if err := h.Salary.DeleteTier(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type salaryConfigRequest struct {
	Name        string   `json:"name"`
	TierIDs     []int64  `json:"tier_ids"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (h *Handler) ListSalaryConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Salary.ListConfigs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *Handler) CreateSalaryConfig(w http.ResponseWriter, r *http.Request) {
	var req salaryConfigRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	cfg, err := h.Salary.CreateConfig(r.Context(), &model.SalaryConfig{
		Name:        req.Name,
		TierIDs:     req.TierIDs,
		EmployeeIDs: req.EmployeeIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (h *Handler) UpdateSalaryConfig(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid config id")
		return
	}

	var req salaryConfigRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, "invalid body")
		return
	}

	cfg, err := h.Salary.UpdateConfig(r.Context(), &model.SalaryConfig{
		ID:          id,
		Name:        req.Name,
		TierIDs:     req.TierIDs,
		EmployeeIDs: req.EmployeeIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) DeleteSalaryConfig(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid config id")
		return
	}

	if err := h.Salary.DeleteConfig(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) CalculateDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := h.parseDate(q.Get("date"))
	if err != nil {
		h.badRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}

	useRealIncome := q.Get("use_real_income") == "true"

	results, err := h.Salary.CalculateDaily(r.Context(), date, q.Get("channel_id"), useRealIncome)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) CalculateMonthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		h.badRequest(w, "invalid year")
		return
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		h.badRequest(w, "invalid month")
		return
	}

	report, err := h.Salary.CalculateMonthly(r.Context(), year, time.Month(month), q.Get("channel_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
