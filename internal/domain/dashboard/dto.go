package dashboard

import (
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
)

// ========================================
// EMPLOYEE
// ========================================

type TodayStatus struct {
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	ClockedIn     bool    `json:"clocked_in"`
	SessionStart  *string `json:"session_start,omitempty"`
	WorkedMinutes int     `json:"worked_minutes"`
	WorkedHours   string  `json:"worked_hours"`
	LateMinutes   int     `json:"late_minutes"`
}

type WorkHoursChartItem struct {
	Date          string `json:"date"`
	Day           string `json:"day"`
	WorkedMinutes int    `json:"worked_minutes"`
	WorkedHours   string `json:"worked_hours"`
}

type EmployeeDashboardResponse struct {
	UserID           string                    `json:"user_id"`
	FullName         string                    `json:"full_name"`
	Today            TodayStatus               `json:"today"`
	Week             []WorkHoursChartItem      `json:"week"`
	WeekTotalHours   string                    `json:"week_total_hours"`
	MonthKPI         kpi.KPIResponse           `json:"month_kpi"`
	MonthSummary     kpi.SummaryResponse       `json:"month_summary"`
	UpcomingAbsences []absence.AbsenceResponse `json:"upcoming_absences"`
	PendingRequests  int                       `json:"pending_requests"`
}

// ========================================
// MANAGER
// ========================================

type MemberPresence struct {
	UserID      string  `json:"user_id"`
	FullName    string  `json:"full_name"`
	Status      string  `json:"status"`
	FirstIn     *string `json:"first_in,omitempty"`
	WorkedHours string  `json:"worked_hours"`
	LateMinutes int     `json:"late_minutes"`
}

type TeamBoard struct {
	TeamID          string           `json:"team_id"`
	TeamName        string           `json:"team_name"`
	StatusCounts    map[string]int   `json:"status_counts"`
	Members         []MemberPresence `json:"members"`
	MonthKPI        kpi.KPIResponse  `json:"month_kpi"`
	PendingAbsences int              `json:"pending_absences"`
}

type ManagerDashboardResponse struct {
	Date  string      `json:"date"`
	Teams []TeamBoard `json:"teams"`
}

// ========================================
// ENTERPRISE
// ========================================

type TeamKPIBrief struct {
	TeamID      string          `json:"team_id"`
	TeamName    string          `json:"team_name"`
	MemberCount int             `json:"member_count"`
	KPI         kpi.KPIResponse `json:"kpi"`
}

type EnterpriseDashboardResponse struct {
	Date              string              `json:"date"`
	HeadCount         int                 `json:"head_count"`
	StatusCounts      map[string]int      `json:"status_counts"`
	TodayPresenceRate float64             `json:"today_presence_rate"`
	MonthKPI          kpi.KPIResponse     `json:"month_kpi"`
	MonthSummary      kpi.SummaryResponse `json:"month_summary"`
	Teams             []TeamKPIBrief      `json:"teams"`
	PendingAbsences   int                 `json:"pending_absences"`
}
