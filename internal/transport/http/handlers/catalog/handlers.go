package cataloghandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/catalog"
	"evaltrack/internal/transport/http/api"
	"evaltrack/internal/transport/http/middleware"
	"evaltrack/internal/transport/http/shared"
)

type Handler struct {
	Store *catalog.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *catalog.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCatalogRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Put("/{kpiID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermCatalogWrite, h.Perms)).Delete("/{kpiID}", h.handleDelete)
	})
}

type kpiRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weightage   float64 `json:"weightage"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_list_failed", "failed to list KPIs", middleware.GetRequestID(r.Context()))
		return
	}
	if kpis == nil {
		kpis = []catalog.KPI{}
	}
	api.Success(w, map[string]any{
		"items":          kpis,
		"totalWeightage": catalog.TotalWeightage(kpis),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeKPI(w, r)
	if !ok {
		return
	}
	id, err := h.Store.Create(r.Context(), payload.Name, payload.Description, payload.Weightage)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kpi_create_failed", "failed to create KPI", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kpiID := chi.URLParam(r, "kpiID")
	payload, ok := decodeKPI(w, r)
	if !ok {
		return
	}
	if err := h.Store.Update(r.Context(), kpiID, payload.Name, payload.Description, payload.Weightage); err != nil {
		if errors.Is(err, catalog.ErrKPINotFound) {
			api.Fail(w, http.StatusNotFound, "kpi_not_found", "KPI not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "kpi_update_failed", "failed to update KPI", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": kpiID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	kpiID := chi.URLParam(r, "kpiID")
	if err := h.Store.Delete(r.Context(), kpiID); err != nil {
		if errors.Is(err, catalog.ErrKPINotFound) {
			api.Fail(w, http.StatusNotFound, "kpi_not_found", "KPI not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "kpi_delete_failed", "failed to delete KPI", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func decodeKPI(w http.ResponseWriter, r *http.Request) (kpiRequest, bool) {
	var payload kpiRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return kpiRequest{}, false
	}
	payload.Name = strings.TrimSpace(payload.Name)

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if payload.Weightage < 0 || payload.Weightage > 100 {
		v.Add("weightage", "must be a percentage between 0 and 100")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return kpiRequest{}, false
	}
	return payload, true
}
