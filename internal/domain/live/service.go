package live

import (
	"context"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
)

type LiveService interface {
	Publisher
	StreamToken(ctx context.Context) (StreamTokenResponse, error)
	// Authenticate resolves a stream token to a user id.
	Authenticate(token string) (string, error)
	Subscribe(userID string) (chan sse.Event, func())
}
