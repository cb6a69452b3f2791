package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
	teamservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
)

func newTestService(f *servicetest.Fixture) kpi.KPIService {
	access := teamservice.NewAccessService(f.Store.Users(), f.Store.Teams())
	calc := NewCalculator(f.Store.Events(), f.Store.Absences(), f.Policies(), f.Clock)
	return NewKPIService(calc, f.Store.Users(), f.Store.Teams(), access, f.Clock)
}

func work(t *testing.T, f *servicetest.Fixture, u user.User, day, inH, inM, outH, outM int) {
	t.Helper()
	ctx := context.Background()
	for _, e := range []clock.Event{
		{CompanyID: u.CompanyID, UserID: u.ID, Type: timeaccount.EventIn, At: servicetest.At(day, inH, inM), Source: clock.SourceSelf},
		{CompanyID: u.CompanyID, UserID: u.ID, Type: timeaccount.EventOut, At: servicetest.At(day, outH, outM), Source: clock.SourceSelf},
	} {
		_, err := f.Store.Events().Create(ctx, e)
		require.NoError(t, err)
	}
}

// seedWeek fills Monday 3 to Friday 7 March. Alice is late on Tuesday,
// missing on Wednesday, on leave on Thursday and works half a day on
// Friday. Bob works every day on time.
func seedWeek(t *testing.T, f *servicetest.Fixture) {
	t.Helper()
	work(t, f, f.Alice, 3, 9, 0, 17, 0)
	work(t, f, f.Alice, 4, 9, 30, 17, 30)
	work(t, f, f.Alice, 7, 8, 55, 12, 55)

	_, err := f.Store.Absences().Create(context.Background(), absence.Absence{
		CompanyID: f.Company.ID,
		UserID:    f.Alice.ID,
		Type:      absence.TypeVacation,
		Status:    absence.StatusApproved,
		StartDate: servicetest.Date(6),
		EndDate:   servicetest.Date(6),
	})
	require.NoError(t, err)

	for day := 3; day <= 7; day++ {
		work(t, f, f.Bob, day, 9, 0, 17, 0)
	}
}

func week() kpi.PeriodRequest {
	from, to := "2025-03-03", "2025-03-07"
	return kpi.PeriodRequest{StartDate: &from, EndDate: &to}
}

func TestKPIService_Me(t *testing.T) {
	f := servicetest.New(t)
	seedWeek(t, f)
	svc := newTestService(f)

	resp, err := svc.Me(f.As(f.Alice), week())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-03", resp.StartDate)
	assert.Equal(t, "2025-03-07", resp.EndDate)
	assert.Equal(t, 5, resp.Summary.WorkingDays)
	assert.Equal(t, 3, resp.Summary.PresentDays)
	assert.Equal(t, 1, resp.Summary.LateDays)
	assert.Equal(t, 1, resp.Summary.AbsentDays)
	assert.Equal(t, 1.0, resp.Summary.AbsenceDays)
	assert.Equal(t, 1200, resp.Summary.WorkedMinutes)
	assert.Equal(t, 1920, resp.Summary.ExpectedMinutes)
	assert.Equal(t, 30, resp.Summary.LateMinutes)

	assert.Equal(t, 75.0, resp.KPI.PresencePercent)
	assert.Equal(t, 33.33, resp.KPI.LatenessPercent)
	assert.Equal(t, 62.5, resp.KPI.ProductivityPercent)
	assert.Equal(t, 20.0, resp.KPI.AbsencePercent)

	require.Len(t, resp.Days, 5)
	assert.Equal(t, "late", resp.Days[1].Status)
	require.NotNil(t, resp.Days[1].FirstIn)
	assert.Equal(t, "09:30", *resp.Days[1].FirstIn)
	assert.Equal(t, "absent", resp.Days[2].Status)
	assert.Equal(t, "on_leave", resp.Days[3].Status)
}

func TestKPIService_Me_DefaultPeriod(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	resp, err := svc.Me(f.As(f.Bob), kpi.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", resp.StartDate)
	assert.Equal(t, "2025-03-12", resp.EndDate)
	assert.Equal(t, 0.0, resp.KPI.PresencePercent)
}

func TestKPIService_Me_InvalidPeriod(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	from, to := "2025-03-10", "2025-03-01"
	_, err := svc.Me(f.As(f.Bob), kpi.PeriodRequest{StartDate: &from, EndDate: &to})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestKPIService_Me_StartDateAloneIsCapped(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	from := "1900-01-01"
	_, err := svc.Me(f.As(f.Bob), kpi.PeriodRequest{StartDate: &from})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "period cannot exceed one year", verrs.ToMap()["start_date"])

	from = "2024-04-01"
	resp, err := svc.Me(f.As(f.Bob), kpi.PeriodRequest{StartDate: &from})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", resp.StartDate)
}

func TestCalculator_Lookback(t *testing.T) {
	f := servicetest.New(t)
	// Sunday evening, 28 hours before the period starts, never closed.
	_, err := f.Store.Events().Create(context.Background(), clock.Event{
		CompanyID: f.Company.ID, UserID: f.Bob.ID, Type: timeaccount.EventIn,
		At: servicetest.At(9, 20, 0), Source: clock.SourceSelf,
	})
	require.NoError(t, err)
	period := timeaccount.Period{From: servicetest.Date(11), To: servicetest.Date(12)}

	worked := func(calc kpi.Calculator) int {
		summaries, _, err := calc.Summaries(context.Background(), f.Company.ID, []user.User{f.Bob}, period)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		return summaries[0].Summary.WorkedMinutes
	}

	assert.Zero(t, worked(NewCalculator(f.Store.Events(), f.Store.Absences(), f.Policies(), f.Clock)))
	// 11 March 00:00 until now, 12 March 10:00.
	assert.Equal(t, 34*60, worked(NewCalculator(f.Store.Events(), f.Store.Absences(), f.Policies(), f.Clock, WithLookback(48*time.Hour))))
}

func TestKPIService_ForUser(t *testing.T) {
	f := servicetest.New(t)
	seedWeek(t, f)
	svc := newTestService(f)

	_, err := svc.ForUser(f.As(f.Alice), f.Bob.ID, week())
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.ForUser(f.As(f.Manager), f.Outsider.ID, week())
	assert.ErrorIs(t, err, team.ErrForbiddenUser)

	resp, err := svc.ForUser(f.As(f.Manager), f.Bob.ID, week())
	require.NoError(t, err)
	assert.Equal(t, 100.0, resp.KPI.PresencePercent)
	assert.Equal(t, 100.0, resp.KPI.ProductivityPercent)
	assert.Equal(t, 0.0, resp.KPI.LatenessPercent)

	self, err := svc.ForUser(f.As(f.Alice), f.Alice.ID, week())
	require.NoError(t, err)
	assert.Equal(t, 75.0, self.KPI.PresencePercent)
}

func TestKPIService_ForTeam(t *testing.T) {
	f := servicetest.New(t)
	seedWeek(t, f)
	svc := newTestService(f)

	_, err := svc.ForTeam(f.As(f.Alice), f.Team.ID, week())
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	resp, err := svc.ForTeam(f.As(f.Manager), f.Team.ID, week())
	require.NoError(t, err)
	assert.Equal(t, "Platform", resp.TeamName)
	assert.Equal(t, 2, resp.MemberCount)
	assert.Equal(t, 10, resp.Summary.WorkingDays)
	assert.Equal(t, 8, resp.Summary.PresentDays)
	assert.Equal(t, 3600, resp.Summary.WorkedMinutes)
	assert.Equal(t, 88.89, resp.KPI.PresencePercent)
	assert.Equal(t, 12.5, resp.KPI.LatenessPercent)
	assert.Equal(t, 83.33, resp.KPI.ProductivityPercent)
	assert.Equal(t, 10.0, resp.KPI.AbsencePercent)

	require.Len(t, resp.Members, 2)
	assert.Equal(t, f.Alice.ID, resp.Members[0].UserID)
	assert.Nil(t, resp.Members[0].Days)
}

func TestKPIService_ForCompany(t *testing.T) {
	f := servicetest.New(t)
	seedWeek(t, f)
	svc := newTestService(f)

	_, err := svc.ForCompany(f.As(f.Manager), week())
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	resp, err := svc.ForCompany(f.As(f.Admin), week())
	require.NoError(t, err)
	assert.Equal(t, 5, resp.HeadCount)
	assert.Equal(t, 25, resp.Summary.WorkingDays)
	assert.Equal(t, 8, resp.Summary.PresentDays)
	require.Len(t, resp.Teams, 1)
	assert.Equal(t, 88.89, resp.Teams[0].KPI.PresencePercent)
	assert.Nil(t, resp.Teams[0].Members)
}
