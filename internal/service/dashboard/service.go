package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

const (
	dateLayout = "2006-01-02"

	// upcomingWindow bounds how far ahead the employee dashboard looks for
	// absences, upcomingLimit how many it shows.
	upcomingWindow = 90
	upcomingLimit  = 5
)

type DashboardServiceImpl struct {
	user.UserRepository
	team.TeamRepository
	absence.AbsenceRepository
	clockService clock.ClockService
	calc         kpi.Calculator
	access       team.AccessControl
	clk          utils.Clock
}

func NewDashboardService(
	clockService clock.ClockService,
	calc kpi.Calculator,
	access team.AccessControl,
	userRepository user.UserRepository,
	teamRepository team.TeamRepository,
	absenceRepository absence.AbsenceRepository,
	clk utils.Clock,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		UserRepository:    userRepository,
		TeamRepository:    teamRepository,
		AbsenceRepository: absenceRepository,
		clockService:      clockService,
		calc:              calc,
		access:            access,
		clk:               clk,
	}
}

// today returns the last day of a month-to-date summary, which is the
// current local date.
func today(s timeaccount.Summary) (timeaccount.DayTotal, bool) {
	if len(s.Days) == 0 {
		return timeaccount.DayTotal{}, false
	}
	return s.Days[len(s.Days)-1], true
}

func newStatusCounts() map[string]int {
	counts := make(map[string]int, len(timeaccount.AllStatuses))
	for _, st := range timeaccount.AllStatuses {
		counts[string(st)] = 0
	}
	return counts
}

// Employee returns the personal dashboard of the caller.
func (s *DashboardServiceImpl) Employee(ctx context.Context) (dashboard.EmployeeDashboardResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return dashboard.EmployeeDashboardResponse{}, err
	}

	me, err := s.UserRepository.GetByID(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return dashboard.EmployeeDashboardResponse{}, err
	}
	policy, err := s.calc.Policy(ctx, actor.CompanyID)
	if err != nil {
		return dashboard.EmployeeDashboardResponse{}, err
	}

	now := s.clk.Now()
	loc := policy.Loc()
	date := timeaccount.DateOf(now, loc)
	week := timeaccount.WeekOf(now, loc)

	var (
		status   clock.StatusResponse
		weekSum  timeaccount.Summary
		monthSum timeaccount.Summary
		upcoming []absence.Absence
		pending  int
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Live status of today
	g.Go(func() error {
		var err error
		status, err = s.clockService.Status(gCtx)
		return err
	})

	// 2. Worked hours of the current week
	g.Go(func() error {
		summaries, _, err := s.calc.Summaries(gCtx, actor.CompanyID, []user.User{me}, week)
		if err != nil {
			return err
		}
		weekSum = summaries[0].Summary
		return nil
	})

	// 3. Month to date KPI
	g.Go(func() error {
		summaries, _, err := s.calc.Summaries(gCtx, actor.CompanyID, []user.User{me}, timeaccount.MonthToDate(now, loc))
		if err != nil {
			return err
		}
		monthSum = summaries[0].Summary
		return nil
	})

	// 4. Upcoming absences
	g.Go(func() error {
		absences, err := s.AbsenceRepository.ListByUsers(gCtx, []string{actor.UserID}, date, date.AddDate(0, 0, upcomingWindow))
		if err != nil {
			return fmt.Errorf("failed to list upcoming absences: %w", err)
		}
		for _, a := range absences {
			if a.Status == absence.StatusApproved || a.Status == absence.StatusWaitingApproval {
				upcoming = append(upcoming, a)
			}
		}
		return nil
	})

	// 5. Own pending requests
	g.Go(func() error {
		var err error
		pending, err = s.AbsenceRepository.CountPending(gCtx, actor.CompanyID, []string{actor.UserID})
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.EmployeeDashboardResponse{}, err
	}

	resp := dashboard.EmployeeDashboardResponse{
		UserID:   me.ID,
		FullName: me.FullName,
		Today: dashboard.TodayStatus{
			Date:          date.Format(dateLayout),
			Status:        status.Status,
			ClockedIn:     status.ClockedIn,
			SessionStart:  status.SessionStart,
			WorkedMinutes: status.TodayWorkedMinutes,
			WorkedHours:   status.TodayWorkedHours,
			LateMinutes:   status.LateMinutes,
		},
		Week:             weekChart(week, weekSum, loc),
		WeekTotalHours:   timeaccount.FormatMinutes(weekSum.WorkedMinutes),
		MonthKPI:         kpi.ToKPIResponse(timeaccount.ComputeKPI(monthSum)),
		MonthSummary:     kpi.ToSummaryResponse(monthSum),
		UpcomingAbsences: make([]absence.AbsenceResponse, 0, upcomingLimit),
		PendingRequests:  pending,
	}
	for i, a := range upcoming {
		if i == upcomingLimit {
			break
		}
		resp.UpcomingAbsences = append(resp.UpcomingAbsences, absence.ToResponse(a))
	}
	return resp, nil
}

// weekChart lists all seven days of the week. Days after today carry zero.
func weekChart(week timeaccount.Period, s timeaccount.Summary, loc *time.Location) []dashboard.WorkHoursChartItem {
	worked := make(map[string]int, len(s.Days))
	for _, d := range s.Days {
		worked[d.Date.Format(dateLayout)] = d.WorkedMinutes
	}

	days := week.Days(loc)
	items := make([]dashboard.WorkHoursChartItem, 0, len(days))
	for _, d := range days {
		key := d.Format(dateLayout)
		items = append(items, dashboard.WorkHoursChartItem{
			Date:          key,
			Day:           d.Weekday().String()[:3],
			WorkedMinutes: worked[key],
			WorkedHours:   timeaccount.FormatMinutes(worked[key]),
		})
	}
	return items
}

// Manager returns the presence board of one team, or of every team the
// caller manages when teamID is empty.
func (s *DashboardServiceImpl) Manager(ctx context.Context, teamID string) (dashboard.ManagerDashboardResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return dashboard.ManagerDashboardResponse{}, err
	}
	if err := actor.Require(user.PermissionDashboardTeam); err != nil {
		return dashboard.ManagerDashboardResponse{}, err
	}

	var teams []team.Team
	if teamID != "" {
		t, err := s.access.AuthorizeTeam(ctx, actor, teamID)
		if err != nil {
			return dashboard.ManagerDashboardResponse{}, err
		}
		teams = []team.Team{t}
	} else {
		teams, err = s.access.ManagedTeams(ctx, actor)
		if err != nil {
			return dashboard.ManagerDashboardResponse{}, err
		}
	}

	policy, err := s.calc.Policy(ctx, actor.CompanyID)
	if err != nil {
		return dashboard.ManagerDashboardResponse{}, err
	}
	now := s.clk.Now()
	period := timeaccount.MonthToDate(now, policy.Loc())

	boards := make([]dashboard.TeamBoard, len(teams))
	g, gCtx := errgroup.WithContext(ctx)
	for i, t := range teams {
		g.Go(func() error {
			board, err := s.teamBoard(gCtx, actor.CompanyID, t, period, policy.Loc())
			if err != nil {
				return err
			}
			boards[i] = board
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dashboard.ManagerDashboardResponse{}, err
	}

	return dashboard.ManagerDashboardResponse{
		Date:  timeaccount.DateOf(now, policy.Loc()).Format(dateLayout),
		Teams: boards,
	}, nil
}

func (s *DashboardServiceImpl) teamBoard(ctx context.Context, companyID string, t team.Team, period timeaccount.Period, loc *time.Location) (dashboard.TeamBoard, error) {
	members, err := s.UserRepository.ListByTeam(ctx, companyID, t.ID)
	if err != nil {
		return dashboard.TeamBoard{}, fmt.Errorf("failed to list members of team %s: %w", t.ID, err)
	}

	summaries, _, err := s.calc.Summaries(ctx, companyID, members, period)
	if err != nil {
		return dashboard.TeamBoard{}, err
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	pending, err := s.AbsenceRepository.CountPending(ctx, companyID, ids)
	if err != nil {
		return dashboard.TeamBoard{}, err
	}

	board := dashboard.TeamBoard{
		TeamID:          t.ID,
		TeamName:        t.Name,
		StatusCounts:    newStatusCounts(),
		Members:         make([]dashboard.MemberPresence, 0, len(summaries)),
		PendingAbsences: pending,
	}
	all := make([]timeaccount.Summary, 0, len(summaries))
	for _, us := range summaries {
		all = append(all, us.Summary)

		mp := dashboard.MemberPresence{
			UserID:      us.User.ID,
			FullName:    us.User.FullName,
			WorkedHours: timeaccount.FormatMinutes(0),
		}
		if day, ok := today(us.Summary); ok {
			mp.Status = string(day.Status)
			mp.WorkedHours = timeaccount.FormatMinutes(day.WorkedMinutes)
			mp.LateMinutes = day.LateMinutes
			if day.FirstIn != nil {
				first := day.FirstIn.In(loc).Format("15:04")
				mp.FirstIn = &first
			}
			board.StatusCounts[mp.Status]++
		}
		board.Members = append(board.Members, mp)
	}
	board.MonthKPI = kpi.ToKPIResponse(timeaccount.ComputeKPI(timeaccount.Aggregate(all)))
	return board, nil
}

// Enterprise returns company wide presence and KPI figures.
func (s *DashboardServiceImpl) Enterprise(ctx context.Context) (dashboard.EnterpriseDashboardResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return dashboard.EnterpriseDashboardResponse{}, err
	}
	if err := actor.Require(user.PermissionDashboardEnterprise); err != nil {
		return dashboard.EnterpriseDashboardResponse{}, err
	}

	policy, err := s.calc.Policy(ctx, actor.CompanyID)
	if err != nil {
		return dashboard.EnterpriseDashboardResponse{}, err
	}
	now := s.clk.Now()

	var (
		users   []user.User
		teams   []team.Team
		pending int
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Head count
	g.Go(func() error {
		var err error
		users, err = s.UserRepository.ListActive(gCtx, actor.CompanyID)
		return err
	})

	// 2. Teams
	g.Go(func() error {
		var err error
		teams, err = s.TeamRepository.List(gCtx, actor.CompanyID, nil)
		return err
	})

	// 3. Absences awaiting a decision
	g.Go(func() error {
		var err error
		pending, err = s.AbsenceRepository.CountPending(gCtx, actor.CompanyID, nil)
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.EnterpriseDashboardResponse{}, err
	}

	summaries, _, err := s.calc.Summaries(ctx, actor.CompanyID, users, timeaccount.MonthToDate(now, policy.Loc()))
	if err != nil {
		return dashboard.EnterpriseDashboardResponse{}, err
	}

	counts := newStatusCounts()
	all := make([]timeaccount.Summary, 0, len(summaries))
	byTeam := make(map[string][]timeaccount.Summary)
	attended, expected := 0, 0
	for _, us := range summaries {
		all = append(all, us.Summary)
		if us.User.TeamID != nil {
			byTeam[*us.User.TeamID] = append(byTeam[*us.User.TeamID], us.Summary)
		}

		day, ok := today(us.Summary)
		if !ok {
			continue
		}
		counts[string(day.Status)]++
		if day.Status == timeaccount.StatusOff || day.Status == timeaccount.StatusOnLeave {
			continue
		}
		expected++
		if day.Status.Attended() {
			attended++
		}
	}
	total := timeaccount.Aggregate(all)

	resp := dashboard.EnterpriseDashboardResponse{
		Date:              timeaccount.DateOf(now, policy.Loc()).Format(dateLayout),
		HeadCount:         len(users),
		StatusCounts:      counts,
		TodayPresenceRate: timeaccount.Percent(float64(attended), float64(expected)),
		MonthKPI:          kpi.ToKPIResponse(timeaccount.ComputeKPI(total)),
		MonthSummary:      kpi.ToSummaryResponse(total),
		Teams:             make([]dashboard.TeamKPIBrief, 0, len(teams)),
		PendingAbsences:   pending,
	}
	for _, t := range teams {
		members := byTeam[t.ID]
		resp.Teams = append(resp.Teams, dashboard.TeamKPIBrief{
			TeamID:      t.ID,
			TeamName:    t.Name,
			MemberCount: len(members),
			KPI:         kpi.ToKPIResponse(timeaccount.ComputeKPI(timeaccount.Aggregate(members))),
		})
	}
	sort.SliceStable(resp.Teams, func(i, j int) bool {
		return resp.Teams[i].TeamName < resp.Teams[j].TeamName
	})
	return resp, nil
}
