package report

import (
	"context"
	"io"
)

type ReportService interface {
	Timesheet(ctx context.Context, req TimesheetRequest) (TimesheetResponse, error)
	// ExportTimesheetCSV writes the timesheet rows as CSV.
	ExportTimesheetCSV(ctx context.Context, req TimesheetRequest, w io.Writer) error
	Absences(ctx context.Context, req AbsenceReportRequest) (AbsenceReportResponse, error)
}
