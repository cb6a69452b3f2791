// Package servicetest seeds an in-memory company for service tests.
package servicetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/memory"
)

// Now is Wednesday 2025-03-12 10:00 UTC, after the grace limit of the
// seeded policy.
var Now = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

// Fixture is one company with an admin, a manager running Team, two
// employees in Team and one employee without a team.
type Fixture struct {
	Store     *memory.Store
	Clock     *utils.MockClock
	Publisher *RecordingPublisher

	Company  company.Company
	Team     team.Team
	Admin    user.User
	Manager  user.User
	Alice    user.User
	Bob      user.User
	Outsider user.User
}

func New(t *testing.T) *Fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	c, err := store.Companies().Create(ctx, company.Company{
		Name:         "Acme",
		Timezone:     "UTC",
		WorkdayStart: 9 * 60,
		GraceMinutes: 15,
		DailyMinutes: 480,
		WorkingDays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	})
	require.NoError(t, err)

	f := &Fixture{
		Store:     store,
		Clock:     &utils.MockClock{FixedNow: Now},
		Publisher: &RecordingPublisher{},
		Company:   c,
	}

	f.Admin = f.AddUser(t, "Ada Admin", user.RoleAdmin, nil)
	f.Manager = f.AddUser(t, "Max Manager", user.RoleManager, nil)

	f.Team, err = store.Teams().Create(ctx, team.Team{
		CompanyID: c.ID,
		Name:      "Platform",
		ManagerID: &f.Manager.ID,
	})
	require.NoError(t, err)

	f.Alice = f.AddUser(t, "Alice Anders", user.RoleEmployee, &f.Team.ID)
	f.Bob = f.AddUser(t, "Bob Brown", user.RoleEmployee, &f.Team.ID)
	f.Outsider = f.AddUser(t, "Olga Outsider", user.RoleEmployee, nil)
	return f
}

// AddUser creates an active user with Password.
func (f *Fixture) AddUser(t *testing.T, name string, role user.Role, teamID *string) user.User {
	t.Helper()
	u, err := f.Store.Users().Create(context.Background(), user.User{
		CompanyID:    f.Company.ID,
		TeamID:       teamID,
		Email:        emailFor(name),
		PasswordHash: passwordHash(t),
		FullName:     name,
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

// Password is the password of every seeded user.
const Password = "password123"

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err == nil {
			hash = string(h)
		}
	})
	require.NotEmpty(t, hash)
	return hash
}

func emailFor(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == ' ':
			out = append(out, '.')
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		default:
			out = append(out, r)
		}
	}
	return string(out) + "@acme.test"
}

// As returns a context authenticated as u.
func (f *Fixture) As(u user.User) context.Context {
	return user.WithActor(context.Background(), user.Actor{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Role:      u.Role,
	})
}

// Policies resolves policies straight from the store.
func (f *Fixture) Policies() company.PolicyProvider {
	return policyProvider{store: f.Store}
}

// Date is local midnight of a day in March 2025.
func Date(day int) time.Time {
	return time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC)
}

// At is an instant in March 2025.
func At(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

type policyProvider struct {
	store *memory.Store
}

func (p policyProvider) PolicyFor(ctx context.Context, companyID string) (timeaccount.Policy, error) {
	c, err := p.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return timeaccount.Policy{}, err
	}
	holidays, err := p.store.Holidays().List(ctx, companyID, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2200, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return timeaccount.Policy{}, err
	}
	return c.Policy(holidays)
}

// RecordingPublisher keeps every published live event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []live.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, ev live.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *RecordingPublisher) Events() []live.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]live.Event(nil), p.events...)
}
