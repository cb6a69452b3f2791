package timeaccount

import "time"

type Status string

const (
	StatusPresent    Status = "present"
	StatusLate       Status = "late"
	StatusClockedIn  Status = "clocked_in"
	StatusOnLeave    Status = "on_leave"
	StatusAbsent     Status = "absent"
	StatusNotArrived Status = "not_arrived"
	StatusOff        Status = "off"
)

// AllStatuses lists statuses in dashboard display order.
var AllStatuses = []Status{
	StatusClockedIn,
	StatusPresent,
	StatusLate,
	StatusOnLeave,
	StatusNotArrived,
	StatusAbsent,
	StatusOff,
}

// Attended reports whether the status means the user showed up.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate || s == StatusClockedIn
}

// StatusAt derives the presence status of one user on the local date of day.
// sessions and absences must belong to that user. Non-working days are off
// even when worked; a full-day approved absence wins over clock activity.
func StatusAt(day time.Time, sessions []Session, absences []Absence, policy Policy, now time.Time) Status {
	loc := policy.Loc()
	date := DateOf(day, loc)
	today := DateOf(now, loc)
	next := date.AddDate(0, 0, 1)

	if !policy.IsWorkingDay(date) {
		return StatusOff
	}

	if _, full := absenceWeight(absences, date); full {
		return StatusOnLeave
	}

	if date.Equal(today) {
		for _, s := range sessions {
			if s.Open() && s.Start.Before(next) {
				return StatusClockedIn
			}
		}
	}

	if firstIn, ok := firstInOn(sessions, date, next); ok {
		if policy.Lateness(firstIn) > 0 {
			return StatusLate
		}
		return StatusPresent
	}

	if date.After(today) {
		return StatusNotArrived
	}
	if date.Equal(today) && !now.After(policy.GraceLimit(now)) {
		return StatusNotArrived
	}
	return StatusAbsent
}

func firstInOn(sessions []Session, dayStart, dayEnd time.Time) (time.Time, bool) {
	var (
		first time.Time
		found bool
	)
	for _, s := range sessions {
		if s.Start.Before(dayStart) || !s.Start.Before(dayEnd) {
			continue
		}
		if !found || s.Start.Before(first) {
			first = s.Start
			found = true
		}
	}
	return first, found
}
