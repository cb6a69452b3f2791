package clock

import (
	"context"
	"time"
)

type ClockService interface {
	ClockIn(ctx context.Context, req ClockRequest) (EventResponse, error)
	ClockOut(ctx context.Context, req ClockRequest) (EventResponse, error)
	Status(ctx context.Context) (StatusResponse, error)
	ListMine(ctx context.Context, req ListEventsRequest) (ListEventsResponse, error)
	List(ctx context.Context, req ListEventsRequest) (ListEventsResponse, error)
	CreateManual(ctx context.Context, req ManualEventRequest) (EventResponse, error)
	Delete(ctx context.Context, id string) error
	// CloseStaleSessions closes sessions left open longer than maxOpen and
	// returns how many were closed.
	CloseStaleSessions(ctx context.Context, maxOpen time.Duration) (int, error)
}
