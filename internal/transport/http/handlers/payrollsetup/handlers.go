package payrollsetuphandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/payrollsetup"
	"evaltrack/internal/transport/http/api"
	"evaltrack/internal/transport/http/middleware"
	"evaltrack/internal/transport/http/shared"
)

type Handler struct {
	Store *payrollsetup.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *payrollsetup.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll-setup", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/{userID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)).Put("/{userID}", h.handleSave)
	})
}

// handleGet returns the user's setup as the master catalog merged with their
// saved amounts, so every component shows up even before it is ever saved.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	master, err := h.Store.MasterComponents(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_setup_failed", "failed to load payroll components", middleware.GetRequestID(r.Context()))
		return
	}
	saved, err := h.Store.SavedLines(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_setup_failed", "failed to load payroll setup", middleware.GetRequestID(r.Context()))
		return
	}

	lines := payrollsetup.Merge(master, saved)
	allowances, deductions := payrollsetup.Totals(lines)
	api.Success(w, map[string]any{
		"userId":          userID,
		"lines":           lines,
		"totalAllowances": allowances,
		"totalDeductions": deductions,
		"netAdjustment":   allowances - deductions,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Lines []payrollsetup.Line `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	for _, line := range payload.Lines {
		v.Required("lines.componentId", line.ComponentID, "is required")
		v.Enum("lines.componentType", line.ComponentType,
			[]string{payrollsetup.ComponentTypeAllowance, payrollsetup.ComponentTypeDeduction},
			"must be allowance or deduction")
		if line.Amount < 0 {
			v.Add("lines.amount", "must not be negative")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.SaveLines(r.Context(), userID, payload.Lines); err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_setup_failed", "failed to save payroll setup", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "saved"}, middleware.GetRequestID(r.Context()))
}
