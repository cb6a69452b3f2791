package timeaccount

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Policy holds the company rules every metric is computed against.
type Policy struct {
	Location     *time.Location
	WorkdayStart int // minutes after local midnight
	GraceMinutes int
	DailyMinutes int
	WorkingDays  []time.Weekday
	Holidays     []time.Time
}

func DefaultPolicy() Policy {
	return Policy{
		Location:     time.UTC,
		WorkdayStart: 9 * 60,
		GraceMinutes: 15,
		DailyMinutes: 8 * 60,
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

var (
	ErrInvalidWorkdayStart = errors.New("workday start must be between 00:00 and 23:59")
	ErrInvalidGrace        = errors.New("grace minutes must be between 0 and 240")
	ErrInvalidDailyMinutes = errors.New("daily minutes must be between 1 and 1440")
	ErrNoWorkingDays       = errors.New("at least one working day is required")
)

func (p Policy) Validate() error {
	if p.WorkdayStart < 0 || p.WorkdayStart >= 24*60 {
		return ErrInvalidWorkdayStart
	}
	if p.GraceMinutes < 0 || p.GraceMinutes > 240 {
		return ErrInvalidGrace
	}
	if p.DailyMinutes <= 0 || p.DailyMinutes > 24*60 {
		return ErrInvalidDailyMinutes
	}
	if len(p.WorkingDays) == 0 {
		return ErrNoWorkingDays
	}
	return nil
}

func (p Policy) Loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// IsWorkingDay reports whether the local date of day is a working weekday
// and not a holiday.
func (p Policy) IsWorkingDay(day time.Time) bool {
	local := day.In(p.Loc())
	working := false
	for _, wd := range p.WorkingDays {
		if wd == local.Weekday() {
			working = true
			break
		}
	}
	if !working {
		return false
	}

	key := local.Format(dateLayout)
	for _, h := range p.Holidays {
		if h.Format(dateLayout) == key {
			return false
		}
	}
	return true
}

// StartOf is the scheduled start on the local date of t, as wall-clock
// time so that DST transition days keep the configured hour.
func (p Policy) StartOf(t time.Time) time.Time {
	loc := p.Loc()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, p.WorkdayStart/60, p.WorkdayStart%60, 0, 0, loc)
}

// GraceLimit is the last instant on the local date of t that is not late.
func (p Policy) GraceLimit(t time.Time) time.Time {
	return p.StartOf(t).Add(time.Duration(p.GraceMinutes) * time.Minute)
}

// Lateness returns the minutes firstIn is past the scheduled start. Arrivals
// within the grace period are on time.
func (p Policy) Lateness(firstIn time.Time) int {
	start := p.StartOf(firstIn)
	if !firstIn.After(p.GraceLimit(firstIn)) {
		return 0
	}
	return int(firstIn.Sub(start).Minutes())
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateOf truncates t to local midnight in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
