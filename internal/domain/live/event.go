package live

import "context"

type EventName string

const (
	EventPresenceChanged  EventName = "presence.changed"
	EventAbsenceRequested EventName = "absence.requested"
	EventAbsenceDecided   EventName = "absence.decided"
)

// Event concerns one user. It is delivered to that user and to the manager
// of their team.
type Event struct {
	Name      EventName
	CompanyID string
	UserID    string
	Data      any
}

type PresenceChangedData struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Status   string `json:"status"`
	At       string `json:"at"`
}

type AbsenceData struct {
	AbsenceID string `json:"absence_id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
