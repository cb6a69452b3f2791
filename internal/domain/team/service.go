package team

import (
	"context"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
)

type TeamService interface {
	Create(ctx context.Context, req CreateTeamRequest) (TeamResponse, error)
	Update(ctx context.Context, id string, req UpdateTeamRequest) (TeamResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (TeamResponse, error)
	List(ctx context.Context) ([]TeamResponse, error)
	AddMember(ctx context.Context, teamID string, req AddMemberRequest) (TeamResponse, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
}

// AccessControl answers who may see whose time data. Admins see the whole
// company, managers the members of the teams they manage, everyone else
// only themselves.
type AccessControl interface {
	AuthorizeUser(ctx context.Context, actor user.Actor, userID string) (user.User, error)
	AuthorizeTeam(ctx context.Context, actor user.Actor, teamID string) (Team, error)
	// ScopeUsers lists the active users the actor may see, narrowed to
	// teamID when it is not empty.
	ScopeUsers(ctx context.Context, actor user.Actor, teamID string) ([]user.User, error)
	ManagedTeams(ctx context.Context, actor user.Actor) ([]Team, error)
	// ManagerOf returns the manager of the user's team, if any.
	ManagerOf(ctx context.Context, companyID, userID string) (string, bool, error)
}
