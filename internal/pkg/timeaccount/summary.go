package timeaccount

import (
	"fmt"
	"math"
	"time"
)

// DayTotal is the worked time of one local calendar day. Sessions crossing
// midnight are split between the days they touch.
type DayTotal struct {
	Date          time.Time
	WorkedMinutes int
	FirstIn       *time.Time
	LastOut       *time.Time
	LateMinutes   int
	Status        Status
}

// DailyTotals buckets sessions into the days of the period.
func DailyTotals(sessions []Session, absences []Absence, period Period, policy Policy, now time.Time) []DayTotal {
	days := period.Days(policy.Loc())
	totals := make([]DayTotal, 0, len(days))

	for _, day := range days {
		next := day.AddDate(0, 0, 1)
		dt := DayTotal{
			Date:          day,
			WorkedMinutes: int(Worked(sessions, day, next, now) / time.Minute),
			Status:        StatusAt(day, sessions, absences, policy, now),
		}

		if first, ok := firstInOn(sessions, day, next); ok {
			dt.FirstIn = &first
			if policy.IsWorkingDay(day) {
				dt.LateMinutes = policy.Lateness(first)
			}
		}
		for _, s := range sessions {
			if s.End == nil || s.End.Before(day) || !s.End.Before(next) {
				continue
			}
			if dt.LastOut == nil || s.End.After(*dt.LastOut) {
				end := *s.End
				dt.LastOut = &end
			}
		}

		totals = append(totals, dt)
	}
	return totals
}

// Summary is the aggregated time account of a user, team or company over a
// period. Counters are additive so summaries of many users can be rolled up.
type Summary struct {
	UserID          string
	Period          Period
	WorkingDays     int
	PresentDays     int
	LateDays        int
	AbsentDays      int
	AbsenceDays     float64
	WorkedMinutes   int
	ExpectedMinutes int
	LateMinutes     int
	Days            []DayTotal
}

// Summarize builds the time account of one user. Days after now are not
// counted, and neither is today while the user can still arrive on time.
func Summarize(userID string, events []Event, absences []Absence, period Period, policy Policy, now time.Time) Summary {
	summary := Summary{UserID: userID, Period: period}

	clipped, ok := period.Until(now, policy.Loc())
	if !ok {
		return summary
	}

	own := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.UserID == userID {
			own = append(own, ev)
		}
	}
	sessions, _ := PairSessions(own)

	ownAbsences := make([]Absence, 0, len(absences))
	for _, a := range absences {
		if a.UserID == userID {
			ownAbsences = append(ownAbsences, a)
		}
	}

	summary.Days = DailyTotals(sessions, ownAbsences, clipped, policy, now)
	for _, day := range summary.Days {
		summary.WorkedMinutes += day.WorkedMinutes
		if !policy.IsWorkingDay(day.Date) || day.Status == StatusNotArrived {
			continue
		}

		summary.WorkingDays++
		weight, _ := absenceWeight(ownAbsences, day.Date)
		summary.AbsenceDays += weight

		switch {
		case day.Status.Attended():
			summary.PresentDays++
			if day.LateMinutes > 0 {
				summary.LateDays++
				summary.LateMinutes += day.LateMinutes
			}
		case day.Status == StatusAbsent:
			summary.AbsentDays++
		}
	}

	expected := (float64(summary.WorkingDays) - summary.AbsenceDays) * float64(policy.DailyMinutes)
	if expected > 0 {
		summary.ExpectedMinutes = int(expected)
	}
	return summary
}

// Aggregate rolls summaries up by summing their counters. Day breakdowns are
// dropped.
func Aggregate(summaries []Summary) Summary {
	var total Summary
	for i, s := range summaries {
		if i == 0 {
			total.Period = s.Period
		}
		total.WorkingDays += s.WorkingDays
		total.PresentDays += s.PresentDays
		total.LateDays += s.LateDays
		total.AbsentDays += s.AbsentDays
		total.AbsenceDays += s.AbsenceDays
		total.WorkedMinutes += s.WorkedMinutes
		total.ExpectedMinutes += s.ExpectedMinutes
		total.LateMinutes += s.LateMinutes
	}
	return total
}

// KPI holds percentages in [0, 100] rounded to two decimals.
type KPI struct {
	PresencePercent     float64
	LatenessPercent     float64
	ProductivityPercent float64
	AbsencePercent      float64
}

func ComputeKPI(s Summary) KPI {
	expectedDays := float64(s.WorkingDays) - s.AbsenceDays
	return KPI{
		PresencePercent:     Percent(float64(s.PresentDays), expectedDays),
		LatenessPercent:     Percent(float64(s.LateDays), float64(s.PresentDays)),
		ProductivityPercent: Percent(float64(s.WorkedMinutes), float64(s.ExpectedMinutes)),
		AbsencePercent:      Percent(s.AbsenceDays, float64(s.WorkingDays)),
	}
}

// Percent returns num/den as a percentage clamped to [0, 100]. A zero or
// negative denominator yields 0.
func Percent(num, den float64) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	v := num / den * 100
	if v > 100 {
		v = 100
	}
	return math.Round(v*100) / 100
}

// FormatMinutes renders minutes as "Xh Ym".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
