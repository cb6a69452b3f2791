package team

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
)

type AccessServiceImpl struct {
	user.UserRepository
	team.TeamRepository
}

func NewAccessService(userRepository user.UserRepository, teamRepository team.TeamRepository) team.AccessControl {
	return &AccessServiceImpl{
		UserRepository: userRepository,
		TeamRepository: teamRepository,
	}
}

// AuthorizeUser implements team.AccessControl.
func (s *AccessServiceImpl) AuthorizeUser(ctx context.Context, actor user.Actor, userID string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, userID)
	if err != nil {
		return user.User{}, err
	}
	if u.ID == actor.UserID || actor.IsAdmin() {
		return u, nil
	}
	if !actor.IsManager() || u.TeamID == nil {
		return user.User{}, team.ErrForbiddenUser
	}

	t, err := s.TeamRepository.GetByID(ctx, actor.CompanyID, *u.TeamID)
	if err != nil {
		return user.User{}, err
	}
	if !t.ManagedBy(actor.UserID) {
		return user.User{}, team.ErrForbiddenUser
	}
	return u, nil
}

// AuthorizeTeam implements team.AccessControl.
func (s *AccessServiceImpl) AuthorizeTeam(ctx context.Context, actor user.Actor, teamID string) (team.Team, error) {
	t, err := s.TeamRepository.GetByID(ctx, actor.CompanyID, teamID)
	if err != nil {
		return team.Team{}, err
	}
	if actor.IsAdmin() || t.ManagedBy(actor.UserID) {
		return t, nil
	}
	return team.Team{}, team.ErrForbiddenTeam
}

// ScopeUsers implements team.AccessControl.
func (s *AccessServiceImpl) ScopeUsers(ctx context.Context, actor user.Actor, teamID string) ([]user.User, error) {
	if teamID != "" {
		if _, err := s.AuthorizeTeam(ctx, actor, teamID); err != nil {
			return nil, err
		}
		return s.UserRepository.ListByTeam(ctx, actor.CompanyID, teamID)
	}

	switch {
	case actor.IsAdmin():
		return s.UserRepository.ListActive(ctx, actor.CompanyID)
	case actor.IsManager():
		teams, err := s.ManagedTeams(ctx, actor)
		if err != nil {
			return nil, err
		}
		users := make([]user.User, 0)
		for _, t := range teams {
			members, err := s.UserRepository.ListByTeam(ctx, actor.CompanyID, t.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list members of team %s: %w", t.ID, err)
			}
			users = append(users, members...)
		}
		return users, nil
	default:
		self, err := s.UserRepository.GetByID(ctx, actor.CompanyID, actor.UserID)
		if err != nil {
			return nil, err
		}
		return []user.User{self}, nil
	}
}

// ManagedTeams implements team.AccessControl.
func (s *AccessServiceImpl) ManagedTeams(ctx context.Context, actor user.Actor) ([]team.Team, error) {
	switch {
	case actor.IsAdmin():
		return s.TeamRepository.List(ctx, actor.CompanyID, nil)
	case actor.IsManager():
		return s.TeamRepository.List(ctx, actor.CompanyID, &actor.UserID)
	default:
		return []team.Team{}, nil
	}
}

// ManagerOf implements team.AccessControl.
func (s *AccessServiceImpl) ManagerOf(ctx context.Context, companyID, userID string) (string, bool, error) {
	u, err := s.UserRepository.GetByID(ctx, companyID, userID)
	if err != nil {
		return "", false, err
	}
	if u.TeamID == nil {
		return "", false, nil
	}

	t, err := s.TeamRepository.GetByID(ctx, companyID, *u.TeamID)
	if err != nil {
		return "", false, err
	}
	if t.ManagerID == nil {
		return "", false, nil
	}
	return *t.ManagerID, true, nil
}
