package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
)

type TeamServiceImpl struct {
	team.TeamRepository
	user.UserRepository
	access team.AccessControl
}

func NewTeamService(teamRepository team.TeamRepository, userRepository user.UserRepository, access team.AccessControl) team.TeamService {
	return &TeamServiceImpl{
		TeamRepository: teamRepository,
		UserRepository: userRepository,
		access:         access,
	}
}

func (s *TeamServiceImpl) checkManager(ctx context.Context, companyID string, managerID *string) error {
	if managerID == nil {
		return nil
	}
	m, err := s.UserRepository.GetByID(ctx, companyID, *managerID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return team.ErrInvalidManager
		}
		return err
	}
	if !m.IsActive || (m.Role != user.RoleManager && m.Role != user.RoleAdmin) {
		return team.ErrInvalidManager
	}
	return nil
}

func (s *TeamServiceImpl) withMembers(ctx context.Context, t team.Team) (team.TeamResponse, error) {
	members, err := s.UserRepository.ListByTeam(ctx, t.CompanyID, t.ID)
	if err != nil {
		return team.TeamResponse{}, fmt.Errorf("failed to list team members: %w", err)
	}
	return team.ToResponse(t, members), nil
}

// Create implements team.TeamService.
func (s *TeamServiceImpl) Create(ctx context.Context, req team.CreateTeamRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := actor.Require(user.PermissionTeamManage); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.checkManager(ctx, actor.CompanyID, req.ManagerID); err != nil {
		return team.TeamResponse{}, err
	}

	created, err := s.TeamRepository.Create(ctx, team.Team{
		CompanyID: actor.CompanyID,
		Name:      req.Name,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		return team.TeamResponse{}, err
	}

	slog.InfoContext(ctx, "Team created", "team_id", created.ID)
	return team.ToResponse(created, []user.User{}), nil
}

// Update implements team.TeamService.
func (s *TeamServiceImpl) Update(ctx context.Context, id string, req team.UpdateTeamRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := actor.Require(user.PermissionTeamManage); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.TeamRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return team.TeamResponse{}, err
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			t.ManagerID = nil
		} else {
			if err := s.checkManager(ctx, actor.CompanyID, req.ManagerID); err != nil {
				return team.TeamResponse{}, err
			}
			t.ManagerID = req.ManagerID
		}
	}

	updated, err := s.TeamRepository.Update(ctx, t)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return s.withMembers(ctx, updated)
}

// Delete implements team.TeamService.
func (s *TeamServiceImpl) Delete(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := actor.Require(user.PermissionTeamManage); err != nil {
		return err
	}
	return s.TeamRepository.Delete(ctx, actor.CompanyID, id)
}

// Get implements team.TeamService.
func (s *TeamServiceImpl) Get(ctx context.Context, id string) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := actor.Require(user.PermissionTeamView); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.access.AuthorizeTeam(ctx, actor, id)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return s.withMembers(ctx, t)
}

// List implements team.TeamService.
func (s *TeamServiceImpl) List(ctx context.Context) ([]team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(user.PermissionTeamView); err != nil {
		return nil, err
	}

	teams, err := s.access.ManagedTeams(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	resp := make([]team.TeamResponse, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, team.ToResponse(t, nil))
	}
	return resp, nil
}

// AddMember implements team.TeamService. A user already in another team is
// moved.
func (s *TeamServiceImpl) AddMember(ctx context.Context, teamID string, req team.AddMemberRequest) (team.TeamResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if err := actor.Require(user.PermissionTeamManage); err != nil {
		return team.TeamResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return team.TeamResponse{}, err
	}

	t, err := s.TeamRepository.GetByID(ctx, actor.CompanyID, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	if _, err := s.UserRepository.GetByID(ctx, actor.CompanyID, req.UserID); err != nil {
		return team.TeamResponse{}, err
	}
	if err := s.UserRepository.SetTeam(ctx, actor.CompanyID, req.UserID, &t.ID); err != nil {
		return team.TeamResponse{}, fmt.Errorf("failed to add member: %w", err)
	}

	t, err = s.TeamRepository.GetByID(ctx, actor.CompanyID, teamID)
	if err != nil {
		return team.TeamResponse{}, err
	}
	return s.withMembers(ctx, t)
}

// RemoveMember implements team.TeamService.
func (s *TeamServiceImpl) RemoveMember(ctx context.Context, teamID, userID string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := actor.Require(user.PermissionTeamManage); err != nil {
		return err
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, userID)
	if err != nil {
		return err
	}
	if u.TeamID == nil || *u.TeamID != teamID {
		return team.ErrNotTeamMember
	}
	return s.UserRepository.SetTeam(ctx, actor.CompanyID, userID, nil)
}
