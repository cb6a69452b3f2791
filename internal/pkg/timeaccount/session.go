package timeaccount

import (
	"sort"
	"time"
)

type EventType string

const (
	EventIn  EventType = "IN"
	EventOut EventType = "OUT"
)

func (t EventType) Valid() bool {
	return t == EventIn || t == EventOut
}

// Event is a single clock punch.
type Event struct {
	ID     string
	UserID string
	Type   EventType
	At     time.Time
}

// Session is an IN paired with the following OUT of the same user.
// End is nil while the user is still clocked in.
type Session struct {
	UserID     string
	Start      time.Time
	End        *time.Time
	InEventID  string
	OutEventID string
}

func (s Session) Open() bool {
	return s.End == nil
}

// EndOr returns the session end, or now when the session is still open.
func (s Session) EndOr(now time.Time) time.Time {
	if s.End != nil {
		return *s.End
	}
	return now
}

// Duration is the worked time of the session; open sessions run until now.
func (s Session) Duration(now time.Time) time.Duration {
	d := s.EndOr(now).Sub(s.Start)
	if d < 0 {
		return 0
	}
	return d
}

const (
	AnomalyDuplicateIn = "duplicate_in"
	AnomalyOrphanOut   = "orphan_out"
)

// Anomaly is an event that could not be paired into a session.
type Anomaly struct {
	Event  Event
	Reason string
}

// PairSessions folds events into sessions per user. An IN while a session is
// already open is dropped as a duplicate, an OUT without an open session is
// dropped as an orphan. Sessions come back ordered by start time.
func PairSessions(events []Event) ([]Session, []Anomaly) {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].At.Equal(sorted[j].At) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].At.Before(sorted[j].At)
	})

	var (
		sessions  []Session
		anomalies []Anomaly
		open      = make(map[string]int)
	)

	for _, ev := range sorted {
		idx, isOpen := open[ev.UserID]
		switch ev.Type {
		case EventIn:
			if isOpen {
				anomalies = append(anomalies, Anomaly{Event: ev, Reason: AnomalyDuplicateIn})
				continue
			}
			sessions = append(sessions, Session{
				UserID:    ev.UserID,
				Start:     ev.At,
				InEventID: ev.ID,
			})
			open[ev.UserID] = len(sessions) - 1
		case EventOut:
			if !isOpen {
				anomalies = append(anomalies, Anomaly{Event: ev, Reason: AnomalyOrphanOut})
				continue
			}
			end := ev.At
			sessions[idx].End = &end
			sessions[idx].OutEventID = ev.ID
			delete(open, ev.UserID)
		}
	}

	return sessions, anomalies
}

// OpenSession returns the last open session of userID, if any.
func OpenSession(sessions []Session, userID string) (Session, bool) {
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].UserID == userID && sessions[i].Open() {
			return sessions[i], true
		}
	}
	return Session{}, false
}

// Worked sums the overlap of every session with [from, to). Time after now
// is never counted.
func Worked(sessions []Session, from, to, now time.Time) time.Duration {
	if now.Before(to) {
		to = now
	}

	var total time.Duration
	for _, s := range sessions {
		start := s.Start
		if start.Before(from) {
			start = from
		}
		end := s.EndOr(now)
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}
	return total
}
