package clock

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

type Source string

const (
	SourceSelf   Source = "self"
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

type Event struct {
	ID        string
	CompanyID string
	UserID    string
	Type      timeaccount.EventType
	At        time.Time
	Source    Source
	Note      *string
	CreatedBy *string
	CreatedAt time.Time

	// Joined
	UserName *string
}

func (e Event) ToTimeaccount() timeaccount.Event {
	return timeaccount.Event{ID: e.ID, UserID: e.UserID, Type: e.Type, At: e.At}
}

func ToTimeaccountEvents(events []Event) []timeaccount.Event {
	out := make([]timeaccount.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.ToTimeaccount())
	}
	return out
}

// StaleSession is an IN with no OUT after it.
type StaleSession struct {
	CompanyID string
	UserID    string
	InEventID string
	Start     time.Time
}
