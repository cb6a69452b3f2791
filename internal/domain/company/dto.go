package company

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

type PolicyResponse struct {
	Timezone     string   `json:"timezone"`
	WorkdayStart string   `json:"workday_start"`
	GraceMinutes int      `json:"grace_minutes"`
	DailyMinutes int      `json:"daily_minutes"`
	DailyHours   string   `json:"daily_hours"`
	WorkingDays  []string `json:"working_days"`
}

type CompanyResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Policy    PolicyResponse `json:"policy"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func ToResponse(c Company) CompanyResponse {
	days := make([]string, 0, len(c.WorkingDays))
	for _, wd := range c.WorkingDays {
		days = append(days, strings.ToLower(wd.String()))
	}

	return CompanyResponse{
		ID:   c.ID,
		Name: c.Name,
		Policy: PolicyResponse{
			Timezone:     c.Timezone,
			WorkdayStart: timeaccount.FormatClock(c.WorkdayStart),
			GraceMinutes: c.GraceMinutes,
			DailyMinutes: c.DailyMinutes,
			DailyHours:   timeaccount.FormatMinutes(c.DailyMinutes),
			WorkingDays:  days,
		},
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

type UpdatePolicyRequest struct {
	Timezone     *string  `json:"timezone,omitempty"`
	WorkdayStart *string  `json:"workday_start,omitempty"`
	GraceMinutes *int     `json:"grace_minutes,omitempty"`
	DailyMinutes *int     `json:"daily_minutes,omitempty"`
	WorkingDays  []string `json:"working_days,omitempty"`
}

func (r *UpdatePolicyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timezone != nil && !validator.IsValidTimezone(*r.Timezone) {
		errs = append(errs, validator.ValidationError{Field: "timezone", Message: "unknown timezone"})
	}
	if r.WorkdayStart != nil && !validator.IsValidTimeOfDay(*r.WorkdayStart) {
		errs = append(errs, validator.ValidationError{Field: "workday_start", Message: "workday start must be HH:MM"})
	}
	if r.GraceMinutes != nil && (*r.GraceMinutes < 0 || *r.GraceMinutes > 240) {
		errs = append(errs, validator.ValidationError{Field: "grace_minutes", Message: "grace minutes must be between 0 and 240"})
	}
	if r.DailyMinutes != nil && (*r.DailyMinutes <= 0 || *r.DailyMinutes > 1440) {
		errs = append(errs, validator.ValidationError{Field: "daily_minutes", Message: "daily minutes must be between 1 and 1440"})
	}
	if r.WorkingDays != nil {
		if len(r.WorkingDays) == 0 {
			errs = append(errs, validator.ValidationError{Field: "working_days", Message: "at least one working day is required"})
		}
		for _, d := range r.WorkingDays {
			if _, ok := validator.ParseWeekday(d); !ok {
				errs = append(errs, validator.ValidationError{Field: "working_days", Message: "unknown day " + d})
				break
			}
		}
	}

	return errs.Err()
}

// Apply copies the set fields onto c. Validate must have passed.
func (r *UpdatePolicyRequest) Apply(c *Company) {
	if r.Timezone != nil {
		c.Timezone = *r.Timezone
	}
	if r.WorkdayStart != nil {
		if m, err := timeaccount.ParseClock(*r.WorkdayStart); err == nil {
			c.WorkdayStart = m
		}
	}
	if r.GraceMinutes != nil {
		c.GraceMinutes = *r.GraceMinutes
	}
	if r.DailyMinutes != nil {
		c.DailyMinutes = *r.DailyMinutes
	}
	if r.WorkingDays != nil {
		days := make([]time.Weekday, 0, len(r.WorkingDays))
		for _, d := range r.WorkingDays {
			if wd, ok := validator.ParseWeekday(d); ok {
				days = append(days, wd)
			}
		}
		c.WorkingDays = days
	}
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	return errs.Err()
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

func ToHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{ID: h.ID, Date: h.Date.Format("2006-01-02"), Name: h.Name}
}
