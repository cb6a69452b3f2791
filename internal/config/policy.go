package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

// PolicyDefaults is the work policy newly registered companies start with.
type PolicyDefaults struct {
	Timezone     string   `yaml:"timezone"`
	WorkdayStart string   `yaml:"workday_start"`
	GraceMinutes int      `yaml:"grace_minutes"`
	DailyMinutes int      `yaml:"daily_minutes"`
	WorkingDays  []string `yaml:"working_days"`
}

func DefaultPolicyDefaults() PolicyDefaults {
	return PolicyDefaults{
		Timezone:     "UTC",
		WorkdayStart: "09:00",
		GraceMinutes: 15,
		DailyMinutes: 480,
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}
}

// LoadPolicyDefaults reads the YAML policy file at path. A missing file
// yields the built-in defaults; keys absent from the file keep theirs.
func LoadPolicyDefaults(path string) (PolicyDefaults, error) {
	defaults := DefaultPolicyDefaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return PolicyDefaults{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return PolicyDefaults{}, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	if _, err := defaults.ToPolicy(); err != nil {
		return PolicyDefaults{}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return defaults, nil
}

// ToPolicy resolves names and clock strings into a timeaccount.Policy.
func (d PolicyDefaults) ToPolicy() (timeaccount.Policy, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return timeaccount.Policy{}, fmt.Errorf("unknown timezone %q: %w", d.Timezone, err)
	}

	start, err := timeaccount.ParseClock(d.WorkdayStart)
	if err != nil {
		return timeaccount.Policy{}, err
	}

	days := make([]time.Weekday, 0, len(d.WorkingDays))
	for _, name := range d.WorkingDays {
		wd, ok := validator.ParseWeekday(name)
		if !ok {
			return timeaccount.Policy{}, fmt.Errorf("unknown working day %q", name)
		}
		days = append(days, wd)
	}

	p := timeaccount.Policy{
		Location:     loc,
		WorkdayStart: start,
		GraceMinutes: d.GraceMinutes,
		DailyMinutes: d.DailyMinutes,
		WorkingDays:  days,
	}
	if err := p.Validate(); err != nil {
		return timeaccount.Policy{}, err
	}
	return p, nil
}
