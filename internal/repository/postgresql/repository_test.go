package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/postgresql"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createCompany(t *testing.T, db *database.DB) company.Company {
	t.Helper()
	c, err := postgresql.NewCompanyRepository(db).Create(context.Background(), company.Company{
		Name:         "Acme",
		Timezone:     "Europe/Berlin",
		WorkdayStart: 540,
		GraceMinutes: 15,
		DailyMinutes: 480,
		WorkingDays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	})
	require.NoError(t, err)
	return c
}

func createUser(t *testing.T, db *database.DB, companyID, email string, role user.Role) user.User {
	t.Helper()
	u, err := postgresql.NewUserRepository(db).Create(context.Background(), user.User{
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: "hash",
		FullName:     "User " + email,
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

func TestCompanyRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewCompanyRepository(db)

	c := createCompany(t, db)
	assert.NotEmpty(t, c.ID)
	assert.Len(t, c.WorkingDays, 5)

	c.WorkingDays = []time.Weekday{time.Saturday}
	c.GraceMinutes = 5
	updated, err := repo.UpdatePolicy(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday}, updated.WorkingDays)
	assert.Equal(t, 5, updated.GraceMinutes)

	_, err = repo.GetByID(ctx, "018f0000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, c.ID)
}

func TestHolidayRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewHolidayRepository(db)
	c := createCompany(t, db)

	h, err := repo.Create(ctx, company.Holiday{CompanyID: c.ID, Date: date(2024, 12, 25), Name: "Christmas"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, company.Holiday{CompanyID: c.ID, Date: date(2024, 12, 25), Name: "Dup"})
	assert.ErrorIs(t, err, company.ErrHolidayExists)

	list, err := repo.List(ctx, c.ID, date(2024, 1, 1), date(2024, 12, 31))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-12-25", list[0].Date.Format("2006-01-02"))

	require.NoError(t, repo.Delete(ctx, c.ID, h.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID, h.ID), company.ErrHolidayNotFound)
}

func TestUserAndTeamRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	users := postgresql.NewUserRepository(db)
	teams := postgresql.NewTeamRepository(db)
	c := createCompany(t, db)

	manager := createUser(t, db, c.ID, "Manager@Example.com", user.RoleManager)
	assert.Equal(t, "manager@example.com", manager.Email)

	_, err := users.Create(ctx, user.User{CompanyID: c.ID, Email: "manager@example.com", PasswordHash: "x", FullName: "Dup", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	tm, err := teams.Create(ctx, team.Team{CompanyID: c.ID, Name: "Support", ManagerID: &manager.ID})
	require.NoError(t, err)
	require.NotNil(t, tm.ManagerName)

	_, err = teams.Create(ctx, team.Team{CompanyID: c.ID, Name: "Support"})
	assert.ErrorIs(t, err, team.ErrTeamNameExists)

	member := createUser(t, db, c.ID, "member@example.com", user.RoleEmployee)
	require.NoError(t, users.SetTeam(ctx, c.ID, member.ID, &tm.ID))

	got, err := users.GetByID(ctx, c.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TeamName)
	assert.Equal(t, "Support", *got.TeamName)

	members, err := users.ListByTeam(ctx, c.ID, tm.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	search := "member"
	list, total, err := users.List(ctx, user.UserFilter{CompanyID: c.ID, Search: &search, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	managed, err := teams.List(ctx, c.ID, &manager.ID)
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, 1, managed[0].MemberCount)

	require.NoError(t, teams.Delete(ctx, c.ID, tm.ID))
	got, err = users.GetByID(ctx, c.ID, member.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)

	_, err = users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestClockEventRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewClockEventRepository(db)
	c := createCompany(t, db)
	u := createUser(t, db, c.ID, "clock@example.com", user.RoleEmployee)

	_, err := repo.Last(ctx, u.ID)
	assert.ErrorIs(t, err, clock.ErrEventNotFound)

	base := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	in, err := repo.Create(ctx, clock.Event{CompanyID: c.ID, UserID: u.ID, Type: timeaccount.EventIn, At: base, Source: clock.SourceSelf})
	require.NoError(t, err)
	require.NotNil(t, in.UserName)

	_, err = repo.Create(ctx, clock.Event{CompanyID: c.ID, UserID: u.ID, Type: timeaccount.EventOut, At: base.Add(8 * time.Hour), Source: clock.SourceSelf})
	require.NoError(t, err)

	last, err := repo.Last(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, timeaccount.EventOut, last.Type)

	events, err := repo.ListByUsers(ctx, []string{u.ID}, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 2)

	listed, total, err := repo.List(ctx, clock.EventFilter{CompanyID: c.ID, UserIDs: []string{u.ID}, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, listed, 1)
	assert.Equal(t, timeaccount.EventOut, listed[0].Type)

	// A later IN without OUT is stale once older than the cutoff.
	openIn, err := repo.Create(ctx, clock.Event{CompanyID: c.ID, UserID: u.ID, Type: timeaccount.EventIn, At: base.Add(24 * time.Hour), Source: clock.SourceSelf})
	require.NoError(t, err)

	stale, err := repo.ListStale(ctx, base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, openIn.ID, stale[0].InEventID)

	stale, err = repo.ListStale(ctx, base.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	require.NoError(t, repo.Delete(ctx, c.ID, openIn.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID, openIn.ID), clock.ErrEventNotFound)
}

func TestTransactor_RollsBack(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)
	repo := postgresql.NewClockEventRepository(db)
	c := createCompany(t, db)
	u := createUser(t, db, c.ID, "tx@example.com", user.RoleEmployee)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.LockUser(ctx, u.ID))
		_, err := repo.Create(ctx, clock.Event{CompanyID: c.ID, UserID: u.ID, Type: timeaccount.EventIn, At: time.Now(), Source: clock.SourceSelf})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.Last(ctx, u.ID)
	assert.ErrorIs(t, err, clock.ErrEventNotFound)
}

func TestAbsenceRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewAbsenceRepository(db)
	c := createCompany(t, db)
	u := createUser(t, db, c.ID, "away@example.com", user.RoleEmployee)
	approver := createUser(t, db, c.ID, "boss@example.com", user.RoleAdmin)

	a, err := repo.Create(ctx, absence.Absence{
		CompanyID: c.ID, UserID: u.ID, Type: absence.TypeVacation, Status: absence.StatusWaitingApproval,
		StartDate: date(2024, 3, 11), EndDate: date(2024, 3, 15),
	})
	require.NoError(t, err)

	overlap, err := repo.HasOverlap(ctx, u.ID, date(2024, 3, 15), date(2024, 3, 18))
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, u.ID, date(2024, 3, 16), date(2024, 3, 18))
	require.NoError(t, err)
	assert.False(t, overlap)

	pending, err := repo.CountPending(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	now := time.Now()
	a.Status = absence.StatusApproved
	a.DecidedBy = &approver.ID
	a.DecidedAt = &now
	decided, err := repo.UpdateStatus(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, absence.StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedName)

	pending, err = repo.CountPending(ctx, c.ID, []string{u.ID})
	require.NoError(t, err)
	assert.Zero(t, pending)

	status := absence.StatusApproved
	list, total, err := repo.List(ctx, absence.AbsenceFilter{CompanyID: c.ID, Status: &status, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	byUsers, err := repo.ListByUsers(ctx, []string{u.ID}, date(2024, 3, 1), date(2024, 3, 11))
	require.NoError(t, err)
	assert.Len(t, byUsers, 1)

	_, err = repo.GetByID(ctx, c.ID, approver.ID)
	assert.ErrorIs(t, err, absence.ErrAbsenceNotFound)
}
