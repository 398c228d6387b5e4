package reportshandler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"evaltrack/internal/domain/auth"
	"evaltrack/internal/domain/evaluation"
	"evaltrack/internal/platform/metrics"
	"evaltrack/internal/transport/http/api"
	"evaltrack/internal/transport/http/middleware"
	"evaltrack/internal/transport/http/shared"
)

type Handler struct {
	Service   *evaluation.Service
	Perms     middleware.PermissionStore
	Metrics   *metrics.Collector
	ExportDir string
}

func NewHandler(service *evaluation.Service, perms middleware.PermissionStore, collector *metrics.Collector, exportDir string) *Handler {
	return &Handler{Service: service, Perms: perms, Metrics: collector, ExportDir: exportDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports/performance", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead, h.Perms))
		r.Get("/weekly", h.handleWeekly)
		r.Get("/monthly", h.handleMonthly)
		r.Get("/monthly/pdf", h.handleMonthlyPDF)
		r.Get("/team", h.handleTeam)
		r.Get("/increments", h.handleIncrements)
		r.Get("/self", h.handleSelf)
	})
}

func (h *Handler) handleWeekly(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	year, _ := v.IntInRange("year", r.URL.Query().Get("year"), 2000, 2100)
	month, _ := v.IntInRange("month", r.URL.Query().Get("month"), 1, 12)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	scope := evaluation.Scope{
		UserID:     r.URL.Query().Get("userId"),
		Year:       year,
		Months:     []int{month},
		Weeks:      evaluation.ParseWeeks(r.URL.Query().Get("weeks")),
		ReportType: evaluation.ReportWeekly,
	}
	rows, err := h.Service.WeeklyReport(r.Context(), scope)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build weekly report", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordReport()
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.monthlyScope(w, r)
	if !ok {
		return
	}

	var rows []evaluation.SummaryRow
	var err error
	if scope.ReportType == evaluation.ReportWeekly {
		scope.Weeks = evaluation.ParseWeeks(r.URL.Query().Get("weeks"))
		rows, err = h.Service.WeeklyReport(r.Context(), scope)
	} else {
		rows, err = h.Service.MonthlyReport(r.Context(), scope)
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build monthly report", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordReport()
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.monthlyScope(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.TeamReport(r.Context(), scope, []string{auth.RoleSuperAdmin})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build team report", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordReport()
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleIncrements(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	year, _ := v.IntInRange("year", r.URL.Query().Get("year"), 2000, 2100)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	rows, err := h.Service.IncrementReport(r.Context(), year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build increment report", middleware.GetRequestID(r.Context()))
		return
	}
	h.Metrics.RecordReport()
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, _ = v.IntInRange("year", raw, 2000, 2100)
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, _ = v.IntInRange("month", raw, 1, 12)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	row, err := h.Service.SelfDashboard(r.Context(), user.UserID, year, month)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, row, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonthlyPDF(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.monthlyScope(w, r)
	if !ok {
		return
	}
	rows, err := h.Service.MonthlyReport(r.Context(), scope)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build monthly report", middleware.GetRequestID(r.Context()))
		return
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Monthly Performance Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Year %d, months %s", scope.Year, joinInts(scope.Months, ", ")))
	pdf.Ln(10)

	headers := []string{"Name", "Role", "Total Score", "Weighted Rating", "Denominator", "Average", "Performance", "Action"}
	widths := []float64{60, 35, 25, 30, 25, 25, 30, 35}
	pdf.SetFont("Helvetica", "B", 10)
	for i, head := range headers {
		pdf.CellFormat(widths[i], 8, head, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{
			row.FullName,
			row.RoleName,
			fmt.Sprintf("%d", row.TotalScore),
			fmt.Sprintf("%.2f", row.TotalWeightedRating),
			fmt.Sprintf("%d", row.Denominator),
			fmt.Sprintf("%.2f", row.AvgWeightedRating),
			row.Performance,
			row.Action,
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := os.MkdirAll(h.ExportDir, 0o755); err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	filePath := filepath.Join(h.ExportDir, fmt.Sprintf("performance-%d-%s.pdf", scope.Year, joinInts(scope.Months, "-")))
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	h.Metrics.RecordReport()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filepath.Base(filePath)))
	http.ServeFile(w, r, filePath)
}

func (h *Handler) monthlyScope(w http.ResponseWriter, r *http.Request) (evaluation.Scope, bool) {
	v := shared.NewValidator()
	year, _ := v.IntInRange("year", r.URL.Query().Get("year"), 2000, 2100)
	months := evaluation.ParseMonths(r.URL.Query().Get("months"))
	if len(months) == 0 {
		v.Add("months", "at least one month between 1 and 12 is required")
	}
	rawType := r.URL.Query().Get("reportType")
	v.Enum("reportType", rawType,
		[]string{string(evaluation.ReportWeekly), string(evaluation.ReportMonthly)},
		"must be Weekly or Monthly")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return evaluation.Scope{}, false
	}

	reportType := evaluation.ReportMonthly
	if strings.EqualFold(rawType, string(evaluation.ReportWeekly)) {
		reportType = evaluation.ReportWeekly
	}
	return evaluation.Scope{
		UserID:     r.URL.Query().Get("userId"),
		Year:       year,
		Months:     months,
		ReportType: reportType,
	}, true
}

func joinInts(values []int, sep string) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprintf("%d", value))
	}
	return strings.Join(parts, sep)
}
