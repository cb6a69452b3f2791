package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/memory"
	clockservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/clock"
	kpiservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
	teamservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
)

func newTestService(f *servicetest.Fixture) dashboard.DashboardService {
	access := teamservice.NewAccessService(f.Store.Users(), f.Store.Teams())
	clockSvc := clockservice.NewClockService(memory.Transactor{}, f.Store.Events(), f.Store.Absences(), f.Policies(), access, f.Publisher, f.Clock)
	calc := kpiservice.NewCalculator(f.Store.Events(), f.Store.Absences(), f.Policies(), f.Clock)
	return NewDashboardService(clockSvc, calc, access, f.Store.Users(), f.Store.Teams(), f.Store.Absences(), f.Clock)
}

func punch(t *testing.T, f *servicetest.Fixture, u user.User, typ timeaccount.EventType, at time.Time) {
	t.Helper()
	_, err := f.Store.Events().Create(context.Background(), clock.Event{
		CompanyID: u.CompanyID, UserID: u.ID, Type: typ, At: at, Source: clock.SourceSelf,
	})
	require.NoError(t, err)
}

func addAbsence(t *testing.T, f *servicetest.Fixture, u user.User, status absence.Status, start, end int) {
	t.Helper()
	_, err := f.Store.Absences().Create(context.Background(), absence.Absence{
		CompanyID: u.CompanyID,
		UserID:    u.ID,
		Type:      absence.TypeVacation,
		Status:    status,
		StartDate: servicetest.Date(start),
		EndDate:   servicetest.Date(end),
	})
	require.NoError(t, err)
}

// seedToday: Alice is clocked in since 08:55, Bob came late and left,
// Olga is on leave, Ada and Max have not shown up.
func seedToday(t *testing.T, f *servicetest.Fixture) {
	t.Helper()
	punch(t, f, f.Alice, timeaccount.EventIn, servicetest.At(10, 9, 0))
	punch(t, f, f.Alice, timeaccount.EventOut, servicetest.At(10, 17, 0))
	punch(t, f, f.Alice, timeaccount.EventIn, servicetest.At(11, 9, 0))
	punch(t, f, f.Alice, timeaccount.EventOut, servicetest.At(11, 17, 0))
	punch(t, f, f.Alice, timeaccount.EventIn, servicetest.At(12, 8, 55))

	punch(t, f, f.Bob, timeaccount.EventIn, servicetest.At(12, 9, 30))
	punch(t, f, f.Bob, timeaccount.EventOut, servicetest.At(12, 9, 50))

	addAbsence(t, f, f.Outsider, absence.StatusApproved, 12, 12)

	addAbsence(t, f, f.Alice, absence.StatusApproved, 14, 14)
	addAbsence(t, f, f.Alice, absence.StatusWaitingApproval, 20, 21)
	addAbsence(t, f, f.Alice, absence.StatusRejected, 25, 25)
}

func TestDashboardService_Employee(t *testing.T) {
	f := servicetest.New(t)
	seedToday(t, f)
	svc := newTestService(f)

	resp, err := svc.Employee(f.As(f.Alice))
	require.NoError(t, err)

	assert.Equal(t, "Alice Anders", resp.FullName)
	assert.Equal(t, "2025-03-12", resp.Today.Date)
	assert.Equal(t, "clocked_in", resp.Today.Status)
	assert.True(t, resp.Today.ClockedIn)
	assert.Equal(t, 65, resp.Today.WorkedMinutes)

	require.Len(t, resp.Week, 7)
	assert.Equal(t, "2025-03-10", resp.Week[0].Date)
	assert.Equal(t, "Mon", resp.Week[0].Day)
	assert.Equal(t, 480, resp.Week[0].WorkedMinutes)
	assert.Equal(t, 65, resp.Week[2].WorkedMinutes)
	assert.Equal(t, 0, resp.Week[6].WorkedMinutes)
	assert.Equal(t, "17h 5m", resp.WeekTotalHours)

	require.Len(t, resp.UpcomingAbsences, 2)
	assert.Equal(t, "2025-03-14", resp.UpcomingAbsences[0].StartDate)
	assert.Equal(t, "waiting_approval", resp.UpcomingAbsences[1].Status)
	assert.Equal(t, 1, resp.PendingRequests)
}

func TestDashboardService_Manager(t *testing.T) {
	f := servicetest.New(t)
	seedToday(t, f)
	svc := newTestService(f)

	_, err := svc.Manager(f.As(f.Alice), "")
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	resp, err := svc.Manager(f.As(f.Manager), "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", resp.Date)
	require.Len(t, resp.Teams, 1)

	board := resp.Teams[0]
	assert.Equal(t, f.Team.ID, board.TeamID)
	assert.Equal(t, 1, board.StatusCounts["clocked_in"])
	assert.Equal(t, 1, board.StatusCounts["late"])
	assert.Equal(t, 0, board.StatusCounts["absent"])
	assert.Equal(t, 1, board.PendingAbsences)

	require.Len(t, board.Members, 2)
	bob := board.Members[1]
	assert.Equal(t, f.Bob.ID, bob.UserID)
	assert.Equal(t, "late", bob.Status)
	require.NotNil(t, bob.FirstIn)
	assert.Equal(t, "09:30", *bob.FirstIn)
	assert.Equal(t, 30, bob.LateMinutes)
	assert.Equal(t, "0h 20m", bob.WorkedHours)

	single, err := svc.Manager(f.As(f.Admin), f.Team.ID)
	require.NoError(t, err)
	assert.Len(t, single.Teams, 1)
}

func TestDashboardService_Enterprise(t *testing.T) {
	f := servicetest.New(t)
	seedToday(t, f)
	svc := newTestService(f)

	_, err := svc.Enterprise(f.As(f.Manager))
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	resp, err := svc.Enterprise(f.As(f.Admin))
	require.NoError(t, err)
	assert.Equal(t, 5, resp.HeadCount)
	assert.Equal(t, 1, resp.StatusCounts["clocked_in"])
	assert.Equal(t, 1, resp.StatusCounts["late"])
	assert.Equal(t, 1, resp.StatusCounts["on_leave"])
	assert.Equal(t, 2, resp.StatusCounts["absent"])
	assert.Equal(t, 50.0, resp.TodayPresenceRate)
	assert.Equal(t, 1, resp.PendingAbsences)

	require.Len(t, resp.Teams, 1)
	assert.Equal(t, 2, resp.Teams[0].MemberCount)
}
