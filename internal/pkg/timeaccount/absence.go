package timeaccount

import "time"

// AbsenceApproved is the only absence status that counts towards metrics.
const AbsenceApproved = "approved"

// Absence is a leave request reduced to what the metrics need. StartDate and
// EndDate are inclusive calendar dates.
type Absence struct {
	UserID    string
	Type      string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	HalfDay   bool
}

// Covers reports whether the local date of day lies within the absence.
func (a Absence) Covers(day time.Time) bool {
	key := day.Format(dateLayout)
	return key >= a.StartDate.Format(dateLayout) && key <= a.EndDate.Format(dateLayout)
}

// Weight is 1 for a full day and 0.5 for a half day.
func (a Absence) Weight() float64 {
	if a.HalfDay {
		return 0.5
	}
	return 1
}

// absenceWeight is the approved absence recorded against one day.
// Overlapping records never count a day twice.
func absenceWeight(absences []Absence, day time.Time) (weight float64, fullDay bool) {
	for _, a := range absences {
		if a.Status != AbsenceApproved || !a.Covers(day) {
			continue
		}
		if w := a.Weight(); w > weight {
			weight = w
		}
	}
	return weight, weight >= 1
}

// WorkingDays counts working days in the period.
func WorkingDays(period Period, policy Policy) int {
	n := 0
	for _, d := range period.Days(policy.Loc()) {
		if policy.IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// AbsenceDays counts approved absence on working days of the period. Half
// days count 0.5.
func AbsenceDays(absences []Absence, period Period, policy Policy) float64 {
	var total float64
	for _, d := range period.Days(policy.Loc()) {
		if !policy.IsWorkingDay(d) {
			continue
		}
		w, _ := absenceWeight(absences, d)
		total += w
	}
	return total
}
