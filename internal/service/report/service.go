package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

const dateLayout = "2006-01-02"

type ReportServiceImpl struct {
	absence.AbsenceRepository
	calc   kpi.Calculator
	access team.AccessControl
	clk    utils.Clock
}

func NewReportService(calc kpi.Calculator, access team.AccessControl, absenceRepository absence.AbsenceRepository, clk utils.Clock) report.ReportService {
	return &ReportServiceImpl{
		AbsenceRepository: absenceRepository,
		calc:              calc,
		access:            access,
		clk:               clk,
	}
}

// scope returns the users a report covers, ordered by name.
func (s *ReportServiceImpl) scope(ctx context.Context, actor user.Actor, teamID *string) ([]user.User, error) {
	id := ""
	if teamID != nil {
		id = *teamID
	}
	users, err := s.access.ScopeUsers(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].FullName < users[j].FullName
	})
	return users, nil
}

// Timesheet builds the monthly time account of every user in scope.
func (s *ReportServiceImpl) Timesheet(ctx context.Context, req report.TimesheetRequest) (report.TimesheetResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return report.TimesheetResponse{}, err
	}
	if err := actor.Require(user.PermissionReportsView); err != nil {
		return report.TimesheetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return report.TimesheetResponse{}, err
	}

	users, err := s.scope(ctx, actor, req.TeamID)
	if err != nil {
		return report.TimesheetResponse{}, err
	}

	policy, err := s.calc.Policy(ctx, actor.CompanyID)
	if err != nil {
		return report.TimesheetResponse{}, err
	}
	period := timeaccount.MonthPeriod(req.Year, time.Month(req.Month), policy.Loc())

	summaries, _, err := s.calc.Summaries(ctx, actor.CompanyID, users, period)
	if err != nil {
		return report.TimesheetResponse{}, fmt.Errorf("failed to compute timesheet: %w", err)
	}

	resp := report.TimesheetResponse{
		Month:       req.Month,
		Year:        req.Year,
		StartDate:   period.From.Format(dateLayout),
		EndDate:     period.To.Format(dateLayout),
		GeneratedAt: s.clk.Now().Format(time.RFC3339),
		TeamID:      req.TeamID,
		Rows:        make([]report.TimesheetRow, 0, len(summaries)),
	}

	all := make([]timeaccount.Summary, 0, len(summaries))
	for _, us := range summaries {
		sum := us.Summary
		all = append(all, sum)

		row := report.TimesheetRow{
			UserID:          us.User.ID,
			FullName:        us.User.FullName,
			Email:           us.User.Email,
			TeamName:        us.User.TeamName,
			WorkingDays:     sum.WorkingDays,
			PresentDays:     sum.PresentDays,
			LateDays:        sum.LateDays,
			AbsentDays:      sum.AbsentDays,
			AbsenceDays:     sum.AbsenceDays,
			WorkedMinutes:   sum.WorkedMinutes,
			WorkedHours:     timeaccount.FormatMinutes(sum.WorkedMinutes),
			ExpectedMinutes: sum.ExpectedMinutes,
			ExpectedHours:   timeaccount.FormatMinutes(sum.ExpectedMinutes),
			LateMinutes:     sum.LateMinutes,
			KPI:             kpi.ToKPIResponse(timeaccount.ComputeKPI(sum)),
		}
		if req.IncludeDays {
			row.Days = kpi.ToDayResponses(sum.Days, policy.Loc())
		}
		resp.Rows = append(resp.Rows, row)
	}

	total := timeaccount.Aggregate(all)
	resp.Totals = kpi.ToSummaryResponse(total)
	resp.KPI = kpi.ToKPIResponse(timeaccount.ComputeKPI(total))
	return resp, nil
}

// ExportTimesheetCSV writes the timesheet as CSV to w.
func (s *ReportServiceImpl) ExportTimesheetCSV(ctx context.Context, req report.TimesheetRequest, w io.Writer) error {
	sheet, err := s.Timesheet(ctx, req)
	if err != nil {
		return err
	}
	return RenderTimesheetCSV(sheet, w)
}

// Absences counts approved absence days per type and user over a year.
// Only working days count; a day covered twice within one type counts once.
func (s *ReportServiceImpl) Absences(ctx context.Context, req report.AbsenceReportRequest) (report.AbsenceReportResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return report.AbsenceReportResponse{}, err
	}
	if err := actor.Require(user.PermissionReportsView); err != nil {
		return report.AbsenceReportResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return report.AbsenceReportResponse{}, err
	}

	users, err := s.scope(ctx, actor, req.TeamID)
	if err != nil {
		return report.AbsenceReportResponse{}, err
	}
	policy, err := s.calc.Policy(ctx, actor.CompanyID)
	if err != nil {
		return report.AbsenceReportResponse{}, err
	}

	resp := report.AbsenceReportResponse{
		Year:   req.Year,
		Rows:   make([]report.AbsenceReportRow, 0, len(users)),
		Totals: emptyByType(),
	}
	if len(users) == 0 {
		return resp, nil
	}

	period := timeaccount.Period{
		From: time.Date(req.Year, time.January, 1, 0, 0, 0, 0, policy.Loc()),
		To:   time.Date(req.Year, time.December, 31, 0, 0, 0, 0, policy.Loc()),
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	absences, err := s.AbsenceRepository.ListByUsers(ctx, ids, period.From, period.To)
	if err != nil {
		return report.AbsenceReportResponse{}, fmt.Errorf("failed to list absences: %w", err)
	}

	byUser := make(map[string][]absence.Absence, len(users))
	for _, a := range absences {
		if a.Status == absence.StatusApproved {
			byUser[a.UserID] = append(byUser[a.UserID], a)
		}
	}

	for _, u := range users {
		row := report.AbsenceReportRow{
			UserID:   u.ID,
			FullName: u.FullName,
			Days:     emptyByType(),
		}
		own := byUser[u.ID]
		for _, t := range absence.AllTypes {
			var ofType []absence.Absence
			for _, a := range own {
				if a.Type == t {
					ofType = append(ofType, a)
				}
			}
			days := timeaccount.AbsenceDays(absence.ToTimeaccountAbsences(ofType), period, policy)
			row.Days[string(t)] = days
			resp.Totals[string(t)] += days
		}
		row.Total = timeaccount.AbsenceDays(absence.ToTimeaccountAbsences(own), period, policy)
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

func emptyByType() map[string]float64 {
	m := make(map[string]float64, len(absence.AllTypes))
	for _, t := range absence.AllTypes {
		m[string(t)] = 0
	}
	return m
}
