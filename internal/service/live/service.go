package live

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
)

type LiveServiceImpl struct {
	hub    *sse.Hub
	jwt    jwt.Service
	access team.AccessControl
}

func NewLiveService(hub *sse.Hub, jwtService jwt.Service, access team.AccessControl) live.LiveService {
	return &LiveServiceImpl{hub: hub, jwt: jwtService, access: access}
}

// recipients resolves who receives an event: the subject user, the manager
// of their team, or both.
func (s *LiveServiceImpl) recipients(ctx context.Context, ev live.Event) []string {
	toUser := ev.Name == live.EventPresenceChanged || ev.Name == live.EventAbsenceDecided
	toManager := ev.Name == live.EventPresenceChanged || ev.Name == live.EventAbsenceRequested

	ids := make([]string, 0, 2)
	if toUser {
		ids = append(ids, ev.UserID)
	}
	if toManager {
		managerID, ok, err := s.access.ManagerOf(ctx, ev.CompanyID, ev.UserID)
		if err != nil {
			slog.WarnContext(ctx, "Live: failed to resolve manager", "user_id", ev.UserID, "error", err)
		} else if ok && managerID != ev.UserID {
			ids = append(ids, managerID)
		}
	}
	return ids
}

// Publish implements live.Publisher. Delivery is best effort.
func (s *LiveServiceImpl) Publish(ctx context.Context, ev live.Event) {
	ids := s.recipients(ctx, ev)
	s.hub.PublishToMany(ids, sse.Event{Event: string(ev.Name), Data: ev.Data})
	slog.DebugContext(ctx, "Live event published", "event", ev.Name, "recipients", len(ids))
}

// StreamToken implements live.LiveService.
func (s *LiveServiceImpl) StreamToken(ctx context.Context) (live.StreamTokenResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return live.StreamTokenResponse{}, err
	}

	token, expiresIn, err := s.jwt.GenerateStreamToken(actor.UserID)
	if err != nil {
		return live.StreamTokenResponse{}, err
	}
	return live.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// Authenticate implements live.LiveService.
func (s *LiveServiceImpl) Authenticate(token string) (string, error) {
	return s.jwt.ValidateStreamToken(token)
}

// Subscribe implements live.LiveService.
func (s *LiveServiceImpl) Subscribe(userID string) (chan sse.Event, func()) {
	return s.hub.Subscribe(userID)
}
