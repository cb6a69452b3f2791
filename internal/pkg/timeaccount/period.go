package timeaccount

import "time"

// Period is an inclusive range of calendar dates. Only the year, month and
// day of From and To are used.
type Period struct {
	From time.Time
	To   time.Time
}

// Days returns local midnight of every date in the period.
func (p Period) Days(loc *time.Location) []time.Time {
	fy, fm, fd := p.From.Date()
	ty, tm, td := p.To.Date()
	first := time.Date(fy, fm, fd, 0, 0, 0, 0, loc)
	last := time.Date(ty, tm, td, 0, 0, 0, 0, loc)

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Bounds returns [start, end) instants covering the period in loc.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	fy, fm, fd := p.From.Date()
	ty, tm, td := p.To.Date()
	return time.Date(fy, fm, fd, 0, 0, 0, 0, loc), time.Date(ty, tm, td, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}

// Until caps the period at the local date of now. The result is empty when
// the whole period lies in the future.
func (p Period) Until(now time.Time, loc *time.Location) (Period, bool) {
	today := DateOf(now, loc)
	fy, fm, fd := p.From.Date()
	if time.Date(fy, fm, fd, 0, 0, 0, 0, loc).After(today) {
		return Period{}, false
	}
	ty, tm, td := p.To.Date()
	if time.Date(ty, tm, td, 0, 0, 0, 0, loc).After(today) {
		p.To = today
	}
	return p, true
}

func (p Period) String() string {
	return p.From.Format(dateLayout) + ".." + p.To.Format(dateLayout)
}

func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{From: first, To: first.AddDate(0, 1, -1)}
}

// MonthToDate runs from the first of now's month to now's date.
func MonthToDate(now time.Time, loc *time.Location) Period {
	today := DateOf(now, loc)
	return Period{From: today.AddDate(0, 0, 1-today.Day()), To: today}
}

// WeekOf is the Monday to Sunday week containing t.
func WeekOf(t time.Time, loc *time.Location) Period {
	day := DateOf(t, loc)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return Period{From: monday, To: monday.AddDate(0, 0, 6)}
}
