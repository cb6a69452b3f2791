package absence

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

type CreateAbsenceRequest struct {
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	HalfDay   bool    `json:"half_day"`
	Reason    *string `json:"reason,omitempty"`

	start time.Time
	end   time.Time
}

func (r *CreateAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of vacation, sick, personal, unpaid, other"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		} else if r.HalfDay && !end.Equal(start) {
			errs = append(errs, validator.ValidationError{Field: "half_day", Message: "half day absences must start and end on the same date"})
		} else if end.Sub(start) > 365*24*time.Hour {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "absence cannot exceed one year"})
		}
	}
	if r.Reason != nil && len(*r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must be at most 1000 characters"})
	}

	r.start, r.end = start, end
	return errs.Err()
}

// Dates returns the parsed range; valid after Validate.
func (r *CreateAbsenceRequest) Dates() (time.Time, time.Time) {
	return r.start, r.end
}

type DecisionRequest struct {
	Note *string `json:"note,omitempty"`
}

// ValidateRejection requires a note; approvals may omit it.
func (r *DecisionRequest) ValidateRejection() error {
	var errs validator.ValidationErrors

	if r.Note == nil || validator.IsEmpty(*r.Note) {
		errs = append(errs, validator.ValidationError{Field: "note", Message: "a reason is required when rejecting"})
	}

	return errs.Err()
}

type ListAbsenceRequest struct {
	UserID    *string
	TeamID    *string
	Status    *string
	Type      *string
	StartDate *string
	EndDate   *string
	Page      int
	Limit     int

	from *time.Time
	to   *time.Time
}

func (r *ListAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UserID != nil && !validator.IsValidUUID(*r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "invalid user id"})
	}
	if r.TeamID != nil && !validator.IsValidUUID(*r.TeamID) {
		errs = append(errs, validator.ValidationError{Field: "team_id", Message: "invalid team id"})
	}
	if r.Status != nil && !Status(*r.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "invalid status"})
	}
	if r.Type != nil && !Type(*r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "invalid type"})
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
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}

	return errs.Err()
}

// Filter builds the repository filter; valid after Validate.
func (r *ListAbsenceRequest) Filter(companyID string, userIDs []string) AbsenceFilter {
	f := AbsenceFilter{
		CompanyID: companyID,
		UserIDs:   userIDs,
		From:      r.from,
		To:        r.to,
		Page:      r.Page,
		Limit:     r.Limit,
	}
	if r.Status != nil {
		s := Status(*r.Status)
		f.Status = &s
	}
	if r.Type != nil {
		t := Type(*r.Type)
		f.Type = &t
	}
	return f
}

type AbsenceResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	UserName     *string `json:"user_name,omitempty"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	HalfDay      bool    `json:"half_day"`
	Reason       *string `json:"reason,omitempty"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedName  *string `json:"decided_by_name,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	DecisionNote *string `json:"decision_note,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func ToResponse(a Absence) AbsenceResponse {
	resp := AbsenceResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		UserName:     a.UserName,
		Type:         string(a.Type),
		Status:       string(a.Status),
		StartDate:    a.StartDate.Format("2006-01-02"),
		EndDate:      a.EndDate.Format("2006-01-02"),
		HalfDay:      a.HalfDay,
		Reason:       a.Reason,
		DecidedBy:    a.DecidedBy,
		DecidedName:  a.DecidedName,
		DecisionNote: a.DecisionNote,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if a.DecidedAt != nil {
		s := a.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

type ListAbsenceResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Absences   []AbsenceResponse `json:"absences"`
}
