package absence

import (
	"context"
	"time"
)

type AbsenceFilter struct {
	CompanyID string
	UserIDs   []string
	Status    *Status
	Type      *Type
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type AbsenceRepository interface {
	Create(ctx context.Context, a Absence) (Absence, error)
	GetByID(ctx context.Context, companyID, id string) (Absence, error)
	UpdateStatus(ctx context.Context, a Absence) (Absence, error)
	// LockUser serialises absence writes of one user until the surrounding
	// transaction ends.
	LockUser(ctx context.Context, userID string) error
	// HasOverlap reports a pending or approved absence of the user touching
	// [start, end].
	HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)
	List(ctx context.Context, filter AbsenceFilter) ([]Absence, int64, error)
	// ListByUsers returns absences of any status touching [from, to].
	ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]Absence, error)
	CountPending(ctx context.Context, companyID string, userIDs []string) (int, error)
}
