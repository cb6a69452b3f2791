package kpi

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

// PeriodRequest selects the date range of a KPI query. Both dates default
// to the current month up to today.
type PeriodRequest struct {
	StartDate *string
	EndDate   *string

	from *time.Time
	to   *time.Time
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.StartDate != nil {
		if d, ok := validator.IsValidDate(*r.StartDate); ok {
			r.from = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != nil {
		if d, ok := validator.IsValidDate(*r.EndDate); ok {
			r.to = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		}
	}
	if r.from != nil && r.to != nil {
		if r.to.Before(*r.from) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		} else if r.to.Sub(*r.from) > maxPeriod {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "period cannot exceed one year"})
		}
	}

	return errs.Err()
}

// maxPeriod bounds the days walked by one query.
const maxPeriod = 366 * 24 * time.Hour

// Period resolves the request against now in loc; valid after Validate.
// The resolved range, capped at today, may not exceed one year.
func (r *PeriodRequest) Period(now time.Time, loc *time.Location) (timeaccount.Period, error) {
	p := timeaccount.MonthToDate(now, loc)
	if r.from != nil {
		p.From = *r.from
	}
	if r.to != nil {
		p.To = *r.to
	}

	end := p.To
	if today := timeaccount.DateOf(now, loc); end.After(today) {
		end = today
	}
	if end.Sub(p.From) > maxPeriod {
		return timeaccount.Period{}, validator.ValidationErrors{
			{Field: "start_date", Message: "period cannot exceed one year"},
		}
	}
	return p, nil
}

type KPIResponse struct {
	PresencePercent     float64 `json:"presence_percent"`
	LatenessPercent     float64 `json:"lateness_percent"`
	ProductivityPercent float64 `json:"productivity_percent"`
	AbsencePercent      float64 `json:"absence_percent"`
}

func ToKPIResponse(k timeaccount.KPI) KPIResponse {
	return KPIResponse{
		PresencePercent:     k.PresencePercent,
		LatenessPercent:     k.LatenessPercent,
		ProductivityPercent: k.ProductivityPercent,
		AbsencePercent:      k.AbsencePercent,
	}
}

type SummaryResponse struct {
	WorkingDays     int     `json:"working_days"`
	PresentDays     int     `json:"present_days"`
	LateDays        int     `json:"late_days"`
	AbsentDays      int     `json:"absent_days"`
	AbsenceDays     float64 `json:"absence_days"`
	WorkedMinutes   int     `json:"worked_minutes"`
	WorkedHours     string  `json:"worked_hours"`
	ExpectedMinutes int     `json:"expected_minutes"`
	ExpectedHours   string  `json:"expected_hours"`
	LateMinutes     int     `json:"late_minutes"`
}

func ToSummaryResponse(s timeaccount.Summary) SummaryResponse {
	return SummaryResponse{
		WorkingDays:     s.WorkingDays,
		PresentDays:     s.PresentDays,
		LateDays:        s.LateDays,
		AbsentDays:      s.AbsentDays,
		AbsenceDays:     s.AbsenceDays,
		WorkedMinutes:   s.WorkedMinutes,
		WorkedHours:     timeaccount.FormatMinutes(s.WorkedMinutes),
		ExpectedMinutes: s.ExpectedMinutes,
		ExpectedHours:   timeaccount.FormatMinutes(s.ExpectedMinutes),
		LateMinutes:     s.LateMinutes,
	}
}

type DayResponse struct {
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	WorkedMinutes int     `json:"worked_minutes"`
	WorkedHours   string  `json:"worked_hours"`
	FirstIn       *string `json:"first_in,omitempty"`
	LastOut       *string `json:"last_out,omitempty"`
	LateMinutes   int     `json:"late_minutes"`
}

func ToDayResponses(days []timeaccount.DayTotal, loc *time.Location) []DayResponse {
	out := make([]DayResponse, 0, len(days))
	for _, d := range days {
		resp := DayResponse{
			Date:          d.Date.Format("2006-01-02"),
			Status:        string(d.Status),
			WorkedMinutes: d.WorkedMinutes,
			WorkedHours:   timeaccount.FormatMinutes(d.WorkedMinutes),
			LateMinutes:   d.LateMinutes,
		}
		if d.FirstIn != nil {
			s := d.FirstIn.In(loc).Format("15:04")
			resp.FirstIn = &s
		}
		if d.LastOut != nil {
			s := d.LastOut.In(loc).Format("15:04")
			resp.LastOut = &s
		}
		out = append(out, resp)
	}
	return out
}

type UserKPIResponse struct {
	UserID    string          `json:"user_id"`
	FullName  string          `json:"full_name"`
	TeamID    *string         `json:"team_id,omitempty"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	KPI       KPIResponse     `json:"kpi"`
	Summary   SummaryResponse `json:"summary"`
	Days      []DayResponse   `json:"days,omitempty"`
}

type TeamKPIResponse struct {
	TeamID      string            `json:"team_id"`
	TeamName    string            `json:"team_name"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	MemberCount int               `json:"member_count"`
	KPI         KPIResponse       `json:"kpi"`
	Summary     SummaryResponse   `json:"summary"`
	Members     []UserKPIResponse `json:"members,omitempty"`
}

type CompanyKPIResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	HeadCount int               `json:"head_count"`
	KPI       KPIResponse       `json:"kpi"`
	Summary   SummaryResponse   `json:"summary"`
	Teams     []TeamKPIResponse `json:"teams"`
}
