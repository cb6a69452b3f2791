package absence

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

type Type string

const (
	TypeVacation Type = "vacation"
	TypeSick     Type = "sick"
	TypePersonal Type = "personal"
	TypeUnpaid   Type = "unpaid"
	TypeOther    Type = "other"
)

var AllTypes = []Type{TypeVacation, TypeSick, TypePersonal, TypeUnpaid, TypeOther}

func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusWaitingApproval Status = "waiting_approval"
	StatusApproved        Status = timeaccount.AbsenceApproved
	StatusRejected        Status = "rejected"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaitingApproval, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Absence struct {
	ID           string
	CompanyID    string
	UserID       string
	Type         Type
	Status       Status
	StartDate    time.Time
	EndDate      time.Time
	HalfDay      bool
	Reason       *string
	DecidedBy    *string
	DecidedAt    *time.Time
	DecisionNote *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined
	UserName    *string
	DecidedName *string
}

func (a Absence) ToTimeaccount() timeaccount.Absence {
	return timeaccount.Absence{
		UserID:    a.UserID,
		Type:      string(a.Type),
		Status:    string(a.Status),
		StartDate: a.StartDate,
		EndDate:   a.EndDate,
		HalfDay:   a.HalfDay,
	}
}

func ToTimeaccountAbsences(absences []Absence) []timeaccount.Absence {
	out := make([]timeaccount.Absence, 0, len(absences))
	for _, a := range absences {
		out = append(out, a.ToTimeaccount())
	}
	return out
}

// Cancellable reports whether the requester may still withdraw the absence
// on the given local date.
func (a Absence) Cancellable(today time.Time) bool {
	switch a.Status {
	case StatusWaitingApproval:
		return true
	case StatusApproved:
		return a.StartDate.Format("2006-01-02") > today.Format("2006-01-02")
	}
	return false
}
