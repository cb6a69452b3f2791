package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Monthly timesheet
	Timesheet(w http.ResponseWriter, r *http.Request)
	ExportTimesheet(w http.ResponseWriter, r *http.Request)

	// Yearly absence days by type
	Absences(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func parseTimesheetRequest(r *http.Request) (report.TimesheetRequest, string) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return report.TimesheetRequest{}, "invalid month parameter"
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return report.TimesheetRequest{}, "invalid year parameter"
	}

	includeDays, err := queryBool(r, "include_days")
	if err != nil {
		return report.TimesheetRequest{}, "invalid include_days parameter"
	}

	req := report.TimesheetRequest{
		Month:  month,
		Year:   year,
		TeamID: queryString(r, "team_id"),
	}
	if includeDays != nil {
		req.IncludeDays = *includeDays
	}
	return req, ""
}

// Timesheet handles GET /reports/timesheet
func (h *reportHandlerImpl) Timesheet(w http.ResponseWriter, r *http.Request) {
	req, problem := parseTimesheetRequest(r)
	if problem != "" {
		response.BadRequest(w, problem, nil)
		return
	}

	result, err := h.reportService.Timesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportTimesheet handles GET /reports/timesheet/export
func (h *reportHandlerImpl) ExportTimesheet(w http.ResponseWriter, r *http.Request) {
	req, problem := parseTimesheetRequest(r)
	if problem != "" {
		response.BadRequest(w, problem, nil)
		return
	}

	// Rendered into memory first so failures still produce a JSON error.
	var buf bytes.Buffer
	if err := h.reportService.ExportTimesheetCSV(r.Context(), req, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("timesheet-%04d-%02d.csv", req.Year, req.Month)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write timesheet export", "error", err)
	}
}

// Absences handles GET /reports/absences
func (h *reportHandlerImpl) Absences(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := h.reportService.Absences(r.Context(), report.AbsenceReportRequest{
		Year:   year,
		TeamID: queryString(r, "team_id"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
