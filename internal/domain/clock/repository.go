package clock

import (
	"context"
	"time"
)

type EventFilter struct {
	CompanyID string
	UserIDs   []string
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

type EventRepository interface {
	Create(ctx context.Context, e Event) (Event, error)
	GetByID(ctx context.Context, companyID, id string) (Event, error)
	Delete(ctx context.Context, companyID, id string) error
	// LockUser serialises clock writes of one user until the surrounding
	// transaction ends.
	LockUser(ctx context.Context, userID string) error
	// Last returns the user's latest event or ErrEventNotFound.
	Last(ctx context.Context, userID string) (Event, error)
	// ListByUsers returns events with from <= at < to ordered by time.
	ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, int64, error)
	// ListStale returns users whose latest event is an IN older than before.
	ListStale(ctx context.Context, before time.Time) ([]StaleSession, error)
}
