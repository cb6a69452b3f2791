package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/report"
)

var timesheetHeader = []string{
	"Name",
	"Email",
	"Team",
	"Working days",
	"Present days",
	"Late days",
	"Absent days",
	"Absence days",
	"Worked",
	"Expected",
	"Late minutes",
	"Presence %",
	"Lateness %",
	"Productivity %",
	"Absence %",
}

// textCell keeps spreadsheet applications from evaluating user supplied
// text as a formula.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderTimesheetCSV writes one line per user followed by a total line.
func RenderTimesheetCSV(sheet report.TimesheetResponse, w io.Writer) error {
	data := make([][]string, 0, len(sheet.Rows)+2)
	data = append(data, timesheetHeader)

	for _, r := range sheet.Rows {
		teamName := ""
		if r.TeamName != nil {
			teamName = *r.TeamName
		}
		data = append(data, []string{
			textCell(r.FullName),
			textCell(r.Email),
			textCell(teamName),
			strconv.Itoa(r.WorkingDays),
			strconv.Itoa(r.PresentDays),
			strconv.Itoa(r.LateDays),
			strconv.Itoa(r.AbsentDays),
			formatFloat(r.AbsenceDays),
			r.WorkedHours,
			r.ExpectedHours,
			strconv.Itoa(r.LateMinutes),
			formatFloat(r.KPI.PresencePercent),
			formatFloat(r.KPI.LatenessPercent),
			formatFloat(r.KPI.ProductivityPercent),
			formatFloat(r.KPI.AbsencePercent),
		})
	}

	t := sheet.Totals
	data = append(data, []string{
		"Total",
		"",
		"",
		strconv.Itoa(t.WorkingDays),
		strconv.Itoa(t.PresentDays),
		strconv.Itoa(t.LateDays),
		strconv.Itoa(t.AbsentDays),
		formatFloat(t.AbsenceDays),
		t.WorkedHours,
		t.ExpectedHours,
		strconv.Itoa(t.LateMinutes),
		formatFloat(sheet.KPI.PresencePercent),
		formatFloat(sheet.KPI.LatenessPercent),
		formatFloat(sheet.KPI.ProductivityPercent),
		formatFloat(sheet.KPI.AbsencePercent),
	})

	writer := csv.NewWriter(w)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			slog.Error("Error writing timesheet csv", "error", err)
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Error("Error writing timesheet csv", "error", err)
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
