package timeaccount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// March 2024 starts on a Friday; the 4th is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

func date(day int) time.Time {
	return at(day, 0, 0)
}

func ev(id, user string, t EventType, when time.Time) Event {
	return Event{ID: id, UserID: user, Type: t, At: when}
}

func TestPairSessions(t *testing.T) {
	events := []Event{
		ev("3", "u1", EventOut, at(4, 17, 0)),
		ev("1", "u1", EventIn, at(4, 9, 0)),
		ev("2", "u1", EventIn, at(4, 9, 5)),
		ev("4", "u1", EventOut, at(4, 17, 5)),
		ev("5", "u1", EventIn, at(4, 18, 0)),
	}

	sessions, anomalies := PairSessions(events)

	require.Len(t, sessions, 2)
	assert.Equal(t, at(4, 9, 0), sessions[0].Start)
	require.NotNil(t, sessions[0].End)
	assert.Equal(t, at(4, 17, 0), *sessions[0].End)
	assert.Equal(t, "1", sessions[0].InEventID)
	assert.Equal(t, "3", sessions[0].OutEventID)
	assert.True(t, sessions[1].Open())

	require.Len(t, anomalies, 2)
	assert.Equal(t, AnomalyDuplicateIn, anomalies[0].Reason)
	assert.Equal(t, "2", anomalies[0].Event.ID)
	assert.Equal(t, AnomalyOrphanOut, anomalies[1].Reason)
	assert.Equal(t, "4", anomalies[1].Event.ID)
}

func TestPairSessions_InterleavedUsers(t *testing.T) {
	events := []Event{
		ev("1", "a", EventIn, at(4, 9, 0)),
		ev("2", "b", EventIn, at(4, 9, 10)),
		ev("3", "a", EventOut, at(4, 12, 0)),
		ev("4", "b", EventOut, at(4, 13, 0)),
	}

	sessions, anomalies := PairSessions(events)

	assert.Empty(t, anomalies)
	require.Len(t, sessions, 2)
	assert.Equal(t, 3*time.Hour, sessions[0].Duration(at(5, 0, 0)))
	assert.Equal(t, 3*time.Hour+50*time.Minute, sessions[1].Duration(at(5, 0, 0)))

	open, ok := OpenSession(sessions, "a")
	assert.False(t, ok)
	assert.Equal(t, Session{}, open)
}

func TestWorked(t *testing.T) {
	closedEnd := at(4, 17, 0)
	sessions := []Session{
		{UserID: "u", Start: at(4, 9, 0), End: &closedEnd},
		{UserID: "u", Start: at(5, 9, 0)},
	}

	tests := []struct {
		name     string
		from, to time.Time
		now      time.Time
		expected time.Duration
	}{
		{"whole closed session", date(4), date(5), at(6, 0, 0), 8 * time.Hour},
		{"clipped to range", at(4, 12, 0), date(5), at(6, 0, 0), 5 * time.Hour},
		{"open session runs to now", date(5), date(6), at(5, 12, 0), 3 * time.Hour},
		{"nothing counted past now", date(4), date(6), at(4, 10, 0), time.Hour},
		{"open session spans later days", date(7), date(8), at(9, 0, 0), 24 * time.Hour},
		{"before any session", date(3), date(4), at(9, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Worked(sessions, tt.from, tt.to, tt.now))
		})
	}
}

func TestDailyTotals_SplitsAcrossMidnight(t *testing.T) {
	end := at(5, 2, 0)
	sessions := []Session{{UserID: "u", Start: at(4, 22, 0), End: &end}}
	period := Period{From: date(4), To: date(5)}

	days := DailyTotals(sessions, nil, period, DefaultPolicy(), at(6, 12, 0))

	require.Len(t, days, 2)
	assert.Equal(t, 120, days[0].WorkedMinutes)
	assert.Equal(t, 120, days[1].WorkedMinutes)
	require.NotNil(t, days[0].FirstIn)
	assert.Nil(t, days[0].LastOut)
	assert.Nil(t, days[1].FirstIn)
	require.NotNil(t, days[1].LastOut)
	assert.Equal(t, end, *days[1].LastOut)
	assert.Equal(t, 13*60, days[0].LateMinutes)
}

func TestPolicy_Lateness(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		in       time.Time
		expected int
	}{
		{"early", at(4, 8, 30), 0},
		{"on time", at(4, 9, 0), 0},
		{"end of grace", at(4, 9, 15), 0},
		{"past grace", at(4, 9, 16), 16},
		{"afternoon", at(4, 13, 0), 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Lateness(tt.in))
		})
	}
}

func TestPolicy_LatenessInLocation(t *testing.T) {
	p := DefaultPolicy()
	p.Location = time.FixedZone("WIB", 7*3600)

	// 02:30 UTC is 09:30 local.
	assert.Equal(t, 30, p.Lateness(at(4, 2, 30)))
	assert.Equal(t, 0, p.Lateness(at(4, 2, 0)))
}

func TestPolicy_LatenessOnDSTChange(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	p := DefaultPolicy()
	p.Location = paris

	tests := []struct {
		name    string
		arrival time.Time
		start   time.Time
		late    int
	}{
		{"spring forward", time.Date(2025, time.March, 31, 9, 30, 0, 0, paris), time.Date(2025, time.March, 31, 9, 0, 0, 0, paris), 30},
		{"spring forward sunday", time.Date(2025, time.March, 30, 9, 30, 0, 0, paris), time.Date(2025, time.March, 30, 9, 0, 0, 0, paris), 30},
		{"fall back", time.Date(2025, time.October, 26, 9, 10, 0, 0, paris), time.Date(2025, time.October, 26, 9, 0, 0, 0, paris), 0},
		{"fall back late", time.Date(2025, time.October, 26, 9, 45, 0, 0, paris), time.Date(2025, time.October, 26, 9, 0, 0, 0, paris), 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.start.Equal(p.StartOf(tt.arrival)), "start %s", p.StartOf(tt.arrival))
			assert.Equal(t, tt.late, p.Lateness(tt.arrival))
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	bad := p
	bad.WorkingDays = nil
	assert.ErrorIs(t, bad.Validate(), ErrNoWorkingDays)

	bad = p
	bad.WorkdayStart = 24 * 60
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWorkdayStart)

	bad = p
	bad.DailyMinutes = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDailyMinutes)
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:45")
	require.NoError(t, err)
	assert.Equal(t, 525, m)
	assert.Equal(t, "08:45", FormatClock(m))

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestWorkingDays(t *testing.T) {
	p := DefaultPolicy()
	march := MonthPeriod(2024, time.March, time.UTC)

	assert.Equal(t, 21, WorkingDays(march, p))

	p.Holidays = []time.Time{date(29)}
	assert.Equal(t, 20, WorkingDays(march, p))

	weekend := Period{From: date(2), To: date(3)}
	assert.Equal(t, 0, WorkingDays(weekend, p))
}

func TestAbsenceDays(t *testing.T) {
	p := DefaultPolicy()
	absences := []Absence{
		{UserID: "u", Status: AbsenceApproved, StartDate: date(7), EndDate: date(12)},
		{UserID: "u", Status: AbsenceApproved, StartDate: date(11), EndDate: date(11)},
		{UserID: "u", Status: "waiting_approval", StartDate: date(13), EndDate: date(13)},
		{UserID: "u", Status: AbsenceApproved, StartDate: date(14), EndDate: date(14), HalfDay: true},
	}

	assert.Equal(t, 4.5, AbsenceDays(absences, MonthPeriod(2024, time.March, time.UTC), p))
	assert.Equal(t, 2.5, AbsenceDays(absences, Period{From: date(11), To: date(31)}, p))
}

func TestStatusAt(t *testing.T) {
	p := DefaultPolicy()
	now := at(4, 10, 0)
	closed := func(from, to time.Time) Session { return Session{UserID: "u", Start: from, End: &to} }

	tests := []struct {
		name     string
		day      time.Time
		sessions []Session
		absences []Absence
		now      time.Time
		expected Status
	}{
		{"clocked in now", date(4), []Session{{UserID: "u", Start: at(4, 9, 30)}}, nil, now, StatusClockedIn},
		{"on time and gone", date(4), []Session{closed(at(4, 8, 55), at(4, 9, 50))}, nil, now, StatusPresent},
		{"late last friday", date(1), []Session{closed(at(1, 9, 20), at(1, 17, 0))}, nil, now, StatusLate},
		{"weekend", date(2), nil, nil, now, StatusOff},
		{"approved leave", date(4), nil, []Absence{{Status: AbsenceApproved, StartDate: date(4), EndDate: date(4)}}, now, StatusOnLeave},
		{"half day leave is not a full absence", date(1), nil, []Absence{{Status: AbsenceApproved, StartDate: date(1), EndDate: date(1), HalfDay: true}}, now, StatusAbsent},
		{"still within grace", date(4), nil, nil, at(4, 9, 10), StatusNotArrived},
		{"past grace", date(4), nil, nil, now, StatusAbsent},
		{"missed day", date(1), nil, nil, now, StatusAbsent},
		{"future day", date(5), nil, nil, now, StatusNotArrived},
		{"weekend with session", date(2), []Session{closed(at(2, 10, 0), at(2, 12, 0))}, nil, now, StatusOff},
		{"weekend with leave", date(3), nil, []Absence{{Status: AbsenceApproved, StartDate: date(1), EndDate: date(4)}}, now, StatusOff},
		{"leave wins over clock activity", date(4), []Session{{UserID: "u", Start: at(4, 9, 30)}}, []Absence{{Status: AbsenceApproved, StartDate: date(4), EndDate: date(4)}}, now, StatusOnLeave},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusAt(tt.day, tt.sessions, tt.absences, p, tt.now))
		})
	}
}

func TestStatusAt_Holiday(t *testing.T) {
	p := DefaultPolicy()
	p.Holidays = []time.Time{date(5)}
	now := at(6, 10, 0)
	worked := Session{UserID: "u", Start: at(5, 9, 30), End: func() *time.Time { e := at(5, 12, 0); return &e }()}
	leave := Absence{Status: AbsenceApproved, StartDate: date(5), EndDate: date(5)}

	assert.Equal(t, StatusOff, StatusAt(date(5), []Session{worked}, nil, p, now))
	assert.Equal(t, StatusOff, StatusAt(date(5), nil, []Absence{leave}, p, now))
	assert.Equal(t, StatusAbsent, StatusAt(date(4), nil, nil, p, now))
}

func TestSummarize(t *testing.T) {
	p := DefaultPolicy()
	events := []Event{
		ev("1", "u", EventIn, at(4, 9, 0)),
		ev("2", "u", EventOut, at(4, 17, 0)),
		ev("3", "u", EventIn, at(5, 9, 30)),
		ev("4", "u", EventOut, at(5, 17, 30)),
		ev("5", "other", EventIn, at(7, 9, 0)),
		ev("6", "other", EventOut, at(7, 17, 0)),
	}
	absences := []Absence{
		{UserID: "u", Status: AbsenceApproved, StartDate: date(6), EndDate: date(6)},
	}
	period := Period{From: date(4), To: date(8)}

	// Friday before the workday starts.
	s := Summarize("u", events, absences, period, p, at(8, 8, 0))

	assert.Equal(t, 4, s.WorkingDays)
	assert.Equal(t, 2, s.PresentDays)
	assert.Equal(t, 1, s.LateDays)
	assert.Equal(t, 30, s.LateMinutes)
	assert.Equal(t, 1, s.AbsentDays)
	assert.Equal(t, 1.0, s.AbsenceDays)
	assert.Equal(t, 960, s.WorkedMinutes)
	assert.Equal(t, 1440, s.ExpectedMinutes)
	require.Len(t, s.Days, 5)
	assert.Equal(t, StatusNotArrived, s.Days[4].Status)

	kpi := ComputeKPI(s)
	assert.Equal(t, 66.67, kpi.PresencePercent)
	assert.Equal(t, 50.0, kpi.LatenessPercent)
	assert.Equal(t, 66.67, kpi.ProductivityPercent)
	assert.Equal(t, 25.0, kpi.AbsencePercent)
}

func TestSummarize_FuturePeriod(t *testing.T) {
	s := Summarize("u", nil, nil, Period{From: date(11), To: date(15)}, DefaultPolicy(), at(8, 12, 0))

	assert.Zero(t, s.WorkingDays)
	assert.Empty(t, s.Days)
	assert.Equal(t, KPI{}, ComputeKPI(s))
}

func TestAggregate(t *testing.T) {
	a := Summary{WorkingDays: 5, PresentDays: 5, LateDays: 1, WorkedMinutes: 2400, ExpectedMinutes: 2400}
	b := Summary{WorkingDays: 5, PresentDays: 3, AbsenceDays: 1, AbsentDays: 1, WorkedMinutes: 1200, ExpectedMinutes: 1920}

	total := Aggregate([]Summary{a, b})

	assert.Equal(t, 10, total.WorkingDays)
	assert.Equal(t, 8, total.PresentDays)
	assert.Equal(t, 4320, total.ExpectedMinutes)

	kpi := ComputeKPI(total)
	assert.Equal(t, 88.89, kpi.PresencePercent)
	assert.Equal(t, 12.5, kpi.LatenessPercent)
	assert.Equal(t, 83.33, kpi.ProductivityPercent)
	assert.Equal(t, 10.0, kpi.AbsencePercent)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 0.0, Percent(5, -1))
	assert.Equal(t, 0.0, Percent(-1, 10))
	assert.Equal(t, 100.0, Percent(150, 100))
	assert.Equal(t, 33.33, Percent(1, 3))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0h 0m", FormatMinutes(0))
	assert.Equal(t, "2h 15m", FormatMinutes(135))
	assert.Equal(t, "0h 0m", FormatMinutes(-5))
}

func TestPeriods(t *testing.T) {
	week := WeekOf(at(6, 15, 0), time.UTC)
	assert.Equal(t, date(4), week.From)
	assert.Equal(t, date(10), week.To)
	assert.Equal(t, week, WeekOf(at(10, 23, 0), time.UTC))

	mtd := MonthToDate(at(13, 8, 0), time.UTC)
	assert.Equal(t, date(1), mtd.From)
	assert.Equal(t, date(13), mtd.To)
	assert.Len(t, mtd.Days(time.UTC), 13)

	clipped, ok := Period{From: date(1), To: date(31)}.Until(at(13, 8, 0), time.UTC)
	require.True(t, ok)
	assert.Equal(t, date(13), clipped.To)
	assert.Equal(t, "2024-03-01..2024-03-13", clipped.String())
}
