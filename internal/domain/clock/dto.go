package clock

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

type ClockRequest struct {
	Note *string `json:"note,omitempty"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Note != nil && len(*r.Note) > 500 {
		errs = append(errs, validator.ValidationError{Field: "note", Message: "note must be at most 500 characters"})
	}

	return errs.Err()
}

// ManualEventRequest lets a manager record a punch the user forgot.
type ManualEventRequest struct {
	UserID string  `json:"user_id"`
	Type   string  `json:"type"`
	At     string  `json:"at"`
	Note   *string `json:"note,omitempty"`

	at time.Time
}

func (r *ManualEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "invalid user id"})
	}
	if !timeaccount.EventType(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be IN or OUT"})
	}
	if at, ok := validator.IsValidDateTime(r.At); !ok {
		errs = append(errs, validator.ValidationError{Field: "at", Message: "at must be an RFC3339 timestamp"})
	} else {
		r.at = at
	}
	if r.Note == nil || validator.IsEmpty(*r.Note) {
		errs = append(errs, validator.ValidationError{Field: "note", Message: "a reason is required for manual events"})
	}

	return errs.Err()
}

// Time is the parsed At; valid after Validate.
func (r *ManualEventRequest) Time() time.Time {
	return r.at
}

type ListEventsRequest struct {
	UserID    *string
	TeamID    *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int

	from *time.Time
	to   *time.Time
}

func (r *ListEventsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "invalid user id"})
	}
	if r.TeamID != nil && !validator.IsValidUUID(*r.TeamID) {
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "invalid team id"})
	}
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
	if r.from != nil && r.to != nil && r.to.Before(*r.from) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}

	return errs.Err()
}

// Dates returns the parsed start and end dates; valid after Validate.
func (r *ListEventsRequest) Dates() (*time.Time, *time.Time) {
	return r.from, r.to
}

type EventResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	UserName  *string `json:"user_name,omitempty"`
	Type      string  `json:"type"`
	At        string  `json:"at"`
	Source    string  `json:"source"`
	Note      *string `json:"note,omitempty"`
	CreatedBy *string `json:"created_by,omitempty"`
}

func ToEventResponse(e Event) EventResponse {
	return EventResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Type:      string(e.Type),
		At:        e.At.Format(time.RFC3339),
		Source:    string(e.Source),
		Note:      e.Note,
		CreatedBy: e.CreatedBy,
	}
}

type ListEventsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Showing    string          `json:"showing"`
	Events     []EventResponse `json:"events"`
}

type StatusResponse struct {
	UserID             string         `json:"user_id"`
	Status             string         `json:"status"`
	ClockedIn          bool           `json:"clocked_in"`
	SessionStart       *string        `json:"session_start,omitempty"`
	TodayWorkedMinutes int            `json:"today_worked_minutes"`
	TodayWorkedHours   string         `json:"today_worked_hours"`
	LateMinutes        int            `json:"late_minutes"`
	LastEvent          *EventResponse `json:"last_event,omitempty"`
}
