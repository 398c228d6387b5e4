package identityhandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/domain/identity"
	"evaltrack/internal/transport/http/api"
	"evaltrack/internal/transport/http/middleware"
)

type Handler struct {
	Store *identity.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *identity.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermUsersRead, h.Perms))
		r.Get("/", h.handleListUsers)
		r.Get("/report-eligible", h.handleReportEligible)
	})
	r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/roles", h.handleListRoles)
}

// handleReportEligible returns the identity rows performance reports join
// with. Role exclusion happens here, before any aggregation sees the users.
func (h *Handler) handleReportEligible(w http.ResponseWriter, r *http.Request) {
	var excludeRoles []string
	if raw := r.URL.Query().Get("excludeRoles"); raw != "" {
		for _, role := range strings.Split(raw, ",") {
			if role = strings.TrimSpace(role); role != "" {
				excludeRoles = append(excludeRoles, role)
			}
		}
	}
	users, err := h.Store.ReportUsers(r.Context(), excludeRoles)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	if users == nil {
		users = []evaluation.Identity{}
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	if users == nil {
		users = []identity.User{}
	}
	api.Success(w, users, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_list_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	if roles == nil {
		roles = []identity.Role{}
	}
	api.Success(w, roles, middleware.GetRequestID(r.Context()))
}
