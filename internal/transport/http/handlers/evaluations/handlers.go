package evaluationshandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/catalog"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/transport/http/api"
	"evaltrack/internal/transport/http/middleware"
	"evaltrack/internal/transport/http/shared"
)

// KPICatalog is the catalog read surface score resolution needs.
type KPICatalog interface {
	List(ctx context.Context) ([]catalog.KPI, error)
}

type Handler struct {
	Service *evaluation.Service
	Catalog KPICatalog
	Perms   middleware.PermissionStore
}

func NewHandler(service *evaluation.Service, kpiCatalog KPICatalog, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Catalog: kpiCatalog, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Post("/", h.handleSubmit)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Put("/{evaluationID}", h.handleResubmit)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Delete("/latest", h.handleDeleteLatest)
	})
}

type scorePayload struct {
	KPIID     string   `json:"kpiId"`
	Score     int      `json:"score"`
	Weightage *float64 `json:"weightage"`
}

type submitRequest struct {
	UserID     string         `json:"userId"`
	WeekNumber int            `json:"weekNumber"`
	WeekStart  string         `json:"weekStart"`
	WeekEnd    string         `json:"weekEnd"`
	Scores     []scorePayload `json:"scores"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "is required")
	weekStart, _ := v.Date("weekStart", payload.WeekStart)
	weekEnd, okEnd := v.Date("weekEnd", payload.WeekEnd)
	if okEnd {
		v.DateOrder("weekStart", weekStart, "weekEnd", weekEnd)
	}
	if len(payload.Scores) == 0 {
		v.Add("scores", "at least one KPI score is required")
	}
	for _, sc := range payload.Scores {
		if sc.KPIID == "" {
			v.Add("scores.kpiId", "is required")
		}
		if sc.Score < 0 || sc.Score > 5 {
			v.Add("scores.score", "must be an integer between 0 and 5")
		}
	}
	if payload.WeekNumber < 0 || payload.WeekNumber > evaluation.WeeksPerMonth {
		v.Add("weekNumber", "must be between 1 and 4")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	scores, err := h.resolveScores(r, payload.Scores)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_lookup_failed", "failed to resolve KPI catalog", middleware.GetRequestID(r.Context()))
		return
	}

	week := payload.WeekNumber
	if week == 0 {
		week = evaluation.WeekOf(weekEnd)
	}
	rec := evaluation.EvaluationRecord{
		UserID:     payload.UserID,
		WeekNumber: week,
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,
		Scores:     scores,
	}
	id, err := h.Service.Submit(r.Context(), &rec)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_submit_failed", "failed to save evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	rec.ID = id
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	evaluationID := chi.URLParam(r, "evaluationID")

	var payload struct {
		Scores []scorePayload `json:"scores"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if len(payload.Scores) == 0 {
		v.Add("scores", "at least one KPI score is required")
	}
	for _, sc := range payload.Scores {
		if sc.KPIID == "" {
			v.Add("scores.kpiId", "is required")
		}
		if sc.Score < 0 || sc.Score > 5 {
			v.Add("scores.score", "must be an integer between 0 and 5")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	scores, err := h.resolveScores(r, payload.Scores)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_lookup_failed", "failed to resolve KPI catalog", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.Resubmit(r.Context(), evaluationID, scores)
	if err != nil {
		if evaluation.IsNotFound(err) {
			api.Fail(w, http.StatusNotFound, "evaluation_not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "evaluation_update_failed", "failed to update evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScope(w, r)
	if !ok {
		return
	}
	records, err := h.Service.ListScoped(r.Context(), scope)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	total := len(records)
	start, end := page.Bounds(total)
	records = records[start:end]
	if records == nil {
		records = []evaluation.EvaluationRecord{}
	}
	api.Success(w, map[string]any{
		"items":  records,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteLatest(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	userID := r.URL.Query().Get("userId")
	v.Required("userId", userID, "is required")
	year, _ := v.IntInRange("year", r.URL.Query().Get("year"), 2000, 2100)
	month, _ := v.IntInRange("month", r.URL.Query().Get("month"), 1, 12)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.DeleteLatestWeek(r.Context(), userID, year, month); err != nil {
		if evaluation.IsNotFound(err) {
			api.Fail(w, http.StatusNotFound, "evaluation_not_found", "no evaluation to delete for that month", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "evaluation_delete_failed", "failed to delete evaluation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// resolveScores attaches the catalog name to each score and fills in the
// current catalog weightage when the caller did not send one. The captured
// weightage then stays with the record regardless of later catalog edits.
func (h *Handler) resolveScores(r *http.Request, payload []scorePayload) ([]evaluation.KPIScore, error) {
	kpis, err := h.Catalog.List(r.Context())
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.KPI, len(kpis))
	for _, kpi := range kpis {
		byID[kpi.ID] = kpi
	}

	scores := make([]evaluation.KPIScore, 0, len(payload))
	for _, sc := range payload {
		score := evaluation.KPIScore{KPIID: sc.KPIID, Score: sc.Score}
		if sc.Weightage != nil {
			score.Weightage = *sc.Weightage
		}
		if kpi, ok := byID[sc.KPIID]; ok {
			score.KPIName = kpi.Name
			if sc.Weightage == nil {
				score.Weightage = kpi.Weightage
			}
		}
		scores = append(scores, score)
	}
	return scores, nil
}

func parseScope(w http.ResponseWriter, r *http.Request) (evaluation.Scope, bool) {
	v := shared.NewValidator()
	year, _ := v.IntInRange("year", r.URL.Query().Get("year"), 2000, 2100)

	months := evaluation.ParseMonths(r.URL.Query().Get("months"))
	if len(months) == 0 {
		if month := r.URL.Query().Get("month"); month != "" {
			months = evaluation.ParseMonths(month)
		}
	}
	if len(months) == 0 {
		v.Add("months", "at least one month between 1 and 12 is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return evaluation.Scope{}, false
	}
	return evaluation.Scope{
		UserID: r.URL.Query().Get("userId"),
		Year:   year,
		Months: months,
		Weeks:  evaluation.ParseWeeks(r.URL.Query().Get("weeks")),
	}, true
}
