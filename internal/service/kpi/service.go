package kpi

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

const dateLayout = "2006-01-02"

type KPIServiceImpl struct {
	user.UserRepository
	team.TeamRepository
	calc   kpi.Calculator
	access team.AccessControl
	clk    utils.Clock
}

func NewKPIService(calc kpi.Calculator, userRepository user.UserRepository, teamRepository team.TeamRepository, access team.AccessControl, clk utils.Clock) kpi.KPIService {
	return &KPIServiceImpl{
		UserRepository: userRepository,
		TeamRepository: teamRepository,
		calc:           calc,
		access:         access,
		clk:            clk,
	}
}

// period resolves the request in the company location.
func (s *KPIServiceImpl) period(ctx context.Context, companyID string, req *kpi.PeriodRequest) (timeaccount.Period, error) {
	if err := req.Validate(); err != nil {
		return timeaccount.Period{}, err
	}
	policy, err := s.calc.Policy(ctx, companyID)
	if err != nil {
		return timeaccount.Period{}, err
	}
	return req.Period(s.clk.Now(), policy.Loc())
}

func userKPI(us kpi.UserSummary, period timeaccount.Period, loc *time.Location, withDays bool) kpi.UserKPIResponse {
	resp := kpi.UserKPIResponse{
		UserID:    us.User.ID,
		FullName:  us.User.FullName,
		TeamID:    us.User.TeamID,
		StartDate: period.From.Format(dateLayout),
		EndDate:   period.To.Format(dateLayout),
		KPI:       kpi.ToKPIResponse(timeaccount.ComputeKPI(us.Summary)),
		Summary:   kpi.ToSummaryResponse(us.Summary),
	}
	if withDays {
		resp.Days = kpi.ToDayResponses(us.Summary.Days, loc)
	}
	return resp
}

func (s *KPIServiceImpl) forUser(ctx context.Context, actor user.Actor, u user.User, req kpi.PeriodRequest) (kpi.UserKPIResponse, error) {
	period, err := s.period(ctx, actor.CompanyID, &req)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}

	summaries, policy, err := s.calc.Summaries(ctx, actor.CompanyID, []user.User{u}, period)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}
	return userKPI(summaries[0], period, policy.Loc(), true), nil
}

// Me implements kpi.KPIService.
func (s *KPIServiceImpl) Me(ctx context.Context, req kpi.PeriodRequest) (kpi.UserKPIResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}
	if err := actor.Require(user.PermissionKPIOwn); err != nil {
		return kpi.UserKPIResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}
	return s.forUser(ctx, actor, u, req)
}

// ForUser implements kpi.KPIService.
func (s *KPIServiceImpl) ForUser(ctx context.Context, userID string, req kpi.PeriodRequest) (kpi.UserKPIResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}
	if userID != actor.UserID {
		if err := actor.Require(user.PermissionKPIViewTeam); err != nil {
			return kpi.UserKPIResponse{}, err
		}
	}

	u, err := s.access.AuthorizeUser(ctx, actor, userID)
	if err != nil {
		return kpi.UserKPIResponse{}, err
	}
	return s.forUser(ctx, actor, u, req)
}

// teamKPI rolls member summaries up into a team response.
func teamKPI(t team.Team, members []kpi.UserSummary, period timeaccount.Period, loc *time.Location) kpi.TeamKPIResponse {
	summaries := make([]timeaccount.Summary, 0, len(members))
	resp := kpi.TeamKPIResponse{
		TeamID:      t.ID,
		TeamName:    t.Name,
		StartDate:   period.From.Format(dateLayout),
		EndDate:     period.To.Format(dateLayout),
		MemberCount: len(members),
		Members:     make([]kpi.UserKPIResponse, 0, len(members)),
	}
	for _, m := range members {
		summaries = append(summaries, m.Summary)
		resp.Members = append(resp.Members, userKPI(m, period, loc, false))
	}

	total := timeaccount.Aggregate(summaries)
	resp.KPI = kpi.ToKPIResponse(timeaccount.ComputeKPI(total))
	resp.Summary = kpi.ToSummaryResponse(total)
	return resp
}

// ForTeam implements kpi.KPIService.
func (s *KPIServiceImpl) ForTeam(ctx context.Context, teamID string, req kpi.PeriodRequest) (kpi.TeamKPIResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return kpi.TeamKPIResponse{}, err
	}
	if err := actor.Require(user.PermissionKPIViewTeam); err != nil {
		return kpi.TeamKPIResponse{}, err
	}

	t, err := s.access.AuthorizeTeam(ctx, actor, teamID)
	if err != nil {
		return kpi.TeamKPIResponse{}, err
	}
	period, err := s.period(ctx, actor.CompanyID, &req)
	if err != nil {
		return kpi.TeamKPIResponse{}, err
	}

	members, err := s.UserRepository.ListByTeam(ctx, actor.CompanyID, t.ID)
	if err != nil {
		return kpi.TeamKPIResponse{}, err
	}
	summaries, policy, err := s.calc.Summaries(ctx, actor.CompanyID, members, period)
	if err != nil {
		return kpi.TeamKPIResponse{}, err
	}
	return teamKPI(t, summaries, period, policy.Loc()), nil
}

// ForCompany implements kpi.KPIService. Users without a team count towards
// the company figures but appear under no team.
func (s *KPIServiceImpl) ForCompany(ctx context.Context, req kpi.PeriodRequest) (kpi.CompanyKPIResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return kpi.CompanyKPIResponse{}, err
	}
	if err := actor.Require(user.PermissionKPIViewCompany); err != nil {
		return kpi.CompanyKPIResponse{}, err
	}
	period, err := s.period(ctx, actor.CompanyID, &req)
	if err != nil {
		return kpi.CompanyKPIResponse{}, err
	}

	var (
		users []user.User
		teams []team.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.UserRepository.ListActive(gctx, actor.CompanyID)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.TeamRepository.List(gctx, actor.CompanyID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return kpi.CompanyKPIResponse{}, err
	}

	summaries, policy, err := s.calc.Summaries(ctx, actor.CompanyID, users, period)
	if err != nil {
		return kpi.CompanyKPIResponse{}, err
	}

	all := make([]timeaccount.Summary, 0, len(summaries))
	byTeam := make(map[string][]kpi.UserSummary)
	for _, us := range summaries {
		all = append(all, us.Summary)
		if us.User.TeamID != nil {
			byTeam[*us.User.TeamID] = append(byTeam[*us.User.TeamID], us)
		}
	}
	total := timeaccount.Aggregate(all)

	resp := kpi.CompanyKPIResponse{
		StartDate: period.From.Format(dateLayout),
		EndDate:   period.To.Format(dateLayout),
		HeadCount: len(users),
		KPI:       kpi.ToKPIResponse(timeaccount.ComputeKPI(total)),
		Summary:   kpi.ToSummaryResponse(total),
		Teams:     make([]kpi.TeamKPIResponse, 0, len(teams)),
	}
	for _, t := range teams {
		tk := teamKPI(t, byTeam[t.ID], period, policy.Loc())
		tk.Members = nil
		resp.Teams = append(resp.Teams, tk)
	}
	sort.SliceStable(resp.Teams, func(i, j int) bool {
		return resp.Teams[i].TeamName < resp.Teams[j].TeamName
	})
	return resp, nil
}
