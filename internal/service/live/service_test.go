package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
	teamservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
)

func newTestService(f *servicetest.Fixture) live.LiveService {
	access := teamservice.NewAccessService(f.Store.Users(), f.Store.Teams())
	return NewLiveService(sse.NewHub(), jwt.NewJWTService("test-secret", time.Hour, time.Minute), access)
}

func received(ch chan sse.Event) []sse.Event {
	var out []sse.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestLiveService_PublishRouting(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	alice, closeAlice := svc.Subscribe(f.Alice.ID)
	defer closeAlice()
	manager, closeManager := svc.Subscribe(f.Manager.ID)
	defer closeManager()
	bob, closeBob := svc.Subscribe(f.Bob.ID)
	defer closeBob()

	ctx := context.Background()
	publish := func(name live.EventName) {
		svc.Publish(ctx, live.Event{Name: name, CompanyID: f.Company.ID, UserID: f.Alice.ID, Data: map[string]string{"user_id": f.Alice.ID}})
	}

	publish(live.EventPresenceChanged)
	assert.Len(t, received(alice), 1)
	assert.Len(t, received(manager), 1)

	publish(live.EventAbsenceRequested)
	assert.Empty(t, received(alice))
	got := received(manager)
	require.Len(t, got, 1)
	assert.Equal(t, "absence.requested", got[0].Event)
	assert.Equal(t, f.Manager.ID, got[0].UserID)

	publish(live.EventAbsenceDecided)
	assert.Len(t, received(alice), 1)
	assert.Empty(t, received(manager))

	assert.Empty(t, received(bob))
}

func TestLiveService_OutsiderHasNoManager(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	manager, closeManager := svc.Subscribe(f.Manager.ID)
	defer closeManager()

	svc.Publish(context.Background(), live.Event{Name: live.EventAbsenceRequested, CompanyID: f.Company.ID, UserID: f.Outsider.ID})
	assert.Empty(t, received(manager))
}

func TestLiveService_StreamToken(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	_, err := svc.StreamToken(context.Background())
	assert.ErrorIs(t, err, user.ErrActorMissing)

	resp, err := svc.StreamToken(f.As(f.Bob))
	require.NoError(t, err)
	assert.Equal(t, 60, resp.ExpiresIn)

	userID, err := svc.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, f.Bob.ID, userID)

	_, err = svc.Authenticate("garbage")
	assert.Error(t, err)
}
