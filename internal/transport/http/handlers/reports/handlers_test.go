package reportshandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/platform/metrics"
	reportshandler "evaltrack/internal/transport/http/handlers/reports"
	"evaltrack/internal/transport/http/middleware"
)

const testSecret = "unit-test-secret"

type fakeStore struct {
	records []evaluation.EvaluationRecord
}

func (f *fakeStore) Upsert(ctx context.Context, rec *evaluation.EvaluationRecord) (string, error) {
	return "id", nil
}

func (f *fakeStore) Update(ctx context.Context, rec *evaluation.EvaluationRecord) error {
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (evaluation.EvaluationRecord, error) {
	return evaluation.EvaluationRecord{}, evaluation.ErrRecordNotFound
}

func (f *fakeStore) ListWindow(ctx context.Context, userID string, ranges []evaluation.MonthRange) ([]evaluation.EvaluationRecord, error) {
	return f.records, nil
}

func (f *fakeStore) DeleteLatestWeek(ctx context.Context, userID string, year, month int) error {
	return nil
}

func (f *fakeStore) HasRecordForWeek(ctx context.Context, userID string, year, month, week int) (bool, error) {
	return false, nil
}

type fakeDirectory struct {
	identities []evaluation.Identity
}

func (f *fakeDirectory) ReportUsers(ctx context.Context, excludeRoles []string) ([]evaluation.Identity, error) {
	return f.identities, nil
}

func (f *fakeDirectory) ReportUser(ctx context.Context, userID string) (evaluation.Identity, error) {
	for _, id := range f.identities {
		if id.UserID == userID {
			return id, nil
		}
	}
	return evaluation.Identity{}, evaluation.ErrIdentityNotFound
}

type allowAll struct{}

func (allowAll) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T, store *fakeStore, dir *fakeDirectory) http.Handler {
	t.Helper()
	service := evaluation.NewService(store, dir)
	handler := reportshandler.NewHandler(service, allowAll{}, metrics.New(), t.TempDir())

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	router.Route("/api/v1", handler.RegisterRoutes)
	return router
}

func authedRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID:   "user-1",
		RoleID:   "role-1",
		RoleName: auth.RoleEvaluator,
	}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func weekRecord(userID string, year, month, week int, rating float64) evaluation.EvaluationRecord {
	end := time.Date(year, time.Month(month), week*7, 0, 0, 0, 0, time.UTC)
	return evaluation.EvaluationRecord{
		UserID:              userID,
		Year:                year,
		Month:               month,
		WeekNumber:          week,
		WeekStart:           end.AddDate(0, 0, -4),
		WeekEnd:             end,
		Scores:              []evaluation.KPIScore{{KPIID: "kpi-1", Score: 4, Weightage: 100, WeightedRating: rating}},
		TotalScore:          4,
		TotalWeightedRating: rating,
	}
}

func TestWeeklyReportRequiresScope(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, &fakeDirectory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/reports/performance/weekly"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing scope, got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if envelope.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", envelope.Error.Code)
	}
}

func TestWeeklyReportClassifiesRow(t *testing.T) {
	store := &fakeStore{records: []evaluation.EvaluationRecord{
		weekRecord("user-1", 2026, 3, 1, 4.2),
	}}
	dir := &fakeDirectory{identities: []evaluation.Identity{
		{UserID: "user-1", FullName: "Dana Example", RoleName: auth.RoleStaff},
	}}
	router := newTestRouter(t, store, dir)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/reports/performance/weekly?year=2026&month=3&weeks=1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data []struct {
			UserID            string  `json:"userId"`
			Denominator       int     `json:"denominator"`
			AvgWeightedRating float64 `json:"avgWeightedRating"`
			Performance       string  `json:"performance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one row, got %d", len(envelope.Data))
	}
	row := envelope.Data[0]
	if row.Denominator != 1 {
		t.Fatalf("expected week-filter denominator 1, got %d", row.Denominator)
	}
	if row.Performance != "Excellent" {
		t.Fatalf("expected Excellent, got %q", row.Performance)
	}
}

func TestReportsRejectAnonymous(t *testing.T) {
	router := newTestRouter(t, &fakeStore{}, &fakeDirectory{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/performance/weekly?year=2026&month=3", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}
