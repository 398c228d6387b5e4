package evaluationshandler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/catalog"
	"evaltrack/internal/domain/evaluation"
	evaluationshandler "evaltrack/internal/transport/http/handlers/evaluations"
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

type fakeDirectory struct{}

func (fakeDirectory) ReportUsers(ctx context.Context, excludeRoles []string) ([]evaluation.Identity, error) {
	return nil, nil
}

func (fakeDirectory) ReportUser(ctx context.Context, userID string) (evaluation.Identity, error) {
	return evaluation.Identity{}, evaluation.ErrIdentityNotFound
}

type fakeCatalog struct{}

func (fakeCatalog) List(ctx context.Context) ([]catalog.KPI, error) {
	return []catalog.KPI{{ID: "kpi-1", Name: "Quality", Weightage: 100}}, nil
}

type allowAll struct{}

func (allowAll) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()
	service := evaluation.NewService(store, fakeDirectory{})
	handler := evaluationshandler.NewHandler(service, fakeCatalog{}, allowAll{})

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

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return envelope.Error.Code
}

func TestListRequiresMonthSelection(t *testing.T) {
	router := newTestRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/evaluations?year=2026"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without months, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := decodeError(t, rec.Body.Bytes()); code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", code)
	}
}

func TestListRequiresYear(t *testing.T) {
	router := newTestRouter(t, &fakeStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/evaluations?months=3"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without year, got %d", rec.Code)
	}
}

func TestListReturnsScopedRecords(t *testing.T) {
	end := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	record := evaluation.EvaluationRecord{
		UserID:     "user-1",
		Year:       2026,
		Month:      3,
		WeekNumber: 1,
		WeekStart:  end.AddDate(0, 0, -4),
		WeekEnd:    end,
		Scores:     []evaluation.KPIScore{{KPIID: "kpi-1", Score: 4, Weightage: 100, WeightedRating: 4}},
	}
	router := newTestRouter(t, &fakeStore{records: []evaluation.EvaluationRecord{record}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/evaluations?year=2026&months=3"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Items []evaluation.EvaluationRecord `json:"items"`
			Total int                           `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if envelope.Data.Total != 1 || len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one record, got total=%d items=%d", envelope.Data.Total, len(envelope.Data.Items))
	}
	if envelope.Data.Items[0].UserID != "user-1" {
		t.Fatalf("unexpected record: %+v", envelope.Data.Items[0])
	}
}
