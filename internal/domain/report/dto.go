package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

// ========================================
// MONTHLY TIMESHEET
// ========================================

type TimesheetRequest struct {
	Month       int
	Year        int
	TeamID      *string
	IncludeDays bool
}

func (r *TimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}

	currentYear := time.Now().Year()
	if r.Year < 2000 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1)})
	}

	if r.TeamID != nil && !validator.IsValidUUID(*r.TeamID) {
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "invalid team id"})
	}

	return errs.Err()
}

type TimesheetRow struct {
	UserID          string            `json:"user_id"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	TeamName        *string           `json:"team_name,omitempty"`
	WorkingDays     int               `json:"working_days"`
	PresentDays     int               `json:"present_days"`
	LateDays        int               `json:"late_days"`
	AbsentDays      int               `json:"absent_days"`
	AbsenceDays     float64           `json:"absence_days"`
	WorkedMinutes   int               `json:"worked_minutes"`
	WorkedHours     string            `json:"worked_hours"`
	ExpectedMinutes int               `json:"expected_minutes"`
	ExpectedHours   string            `json:"expected_hours"`
	LateMinutes     int               `json:"late_minutes"`
	KPI             kpi.KPIResponse   `json:"kpi"`
	Days            []kpi.DayResponse `json:"days,omitempty"`
}

type TimesheetResponse struct {
	Month       int                 `json:"month"`
	Year        int                 `json:"year"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	GeneratedAt string              `json:"generated_at"`
	TeamID      *string             `json:"team_id,omitempty"`
	Rows        []TimesheetRow      `json:"rows"`
	Totals      kpi.SummaryResponse `json:"totals"`
	KPI         kpi.KPIResponse     `json:"kpi"`
}

// ========================================
// YEARLY ABSENCES
// ========================================

type AbsenceReportRequest struct {
	Year   int
	TeamID *string
}

func (r *AbsenceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	currentYear := time.Now().Year()
	if r.Year < 2000 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1)})
	}
	if r.TeamID != nil && !validator.IsValidUUID(*r.TeamID) {
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "invalid team id"})
	}

	return errs.Err()
}

type AbsenceReportRow struct {
	UserID   string             `json:"user_id"`
	FullName string             `json:"full_name"`
	Days     map[string]float64 `json:"days_by_type"`
	Total    float64            `json:"total"`
}

type AbsenceReportResponse struct {
	Year   int                `json:"year"`
	Rows   []AbsenceReportRow `json:"rows"`
	Totals map[string]float64 `json:"totals"`
}
