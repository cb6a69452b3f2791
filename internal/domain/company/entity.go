package company

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

type Company struct {
	ID           string
	Name         string
	Timezone     string
	WorkdayStart int
	GraceMinutes int
	DailyMinutes int
	WorkingDays  []time.Weekday
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Holiday struct {
	ID        string
	CompanyID string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// Policy combines the company rules with its holidays.
func (c Company) Policy(holidays []Holiday) (timeaccount.Policy, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return timeaccount.Policy{}, fmt.Errorf("failed to load company timezone %q: %w", c.Timezone, err)
	}

	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}

	return timeaccount.Policy{
		Location:     loc,
		WorkdayStart: c.WorkdayStart,
		GraceMinutes: c.GraceMinutes,
		DailyMinutes: c.DailyMinutes,
		WorkingDays:  c.WorkingDays,
		Holidays:     dates,
	}, nil
}
