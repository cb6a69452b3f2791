package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
)

func newTestService(f *servicetest.Fixture) team.TeamService {
	access := NewAccessService(f.Store.Users(), f.Store.Teams())
	return NewTeamService(f.Store.Teams(), f.Store.Users(), access)
}

func strPtr(s string) *string { return &s }

func TestTeamService_Create(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	_, err := svc.Create(f.As(f.Manager), team.CreateTeamRequest{Name: "Design"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	created, err := svc.Create(f.As(f.Admin), team.CreateTeamRequest{Name: "Design", ManagerID: &f.Manager.ID})
	require.NoError(t, err)
	assert.Equal(t, "Design", created.Name)
	require.NotNil(t, created.ManagerName)
	assert.Equal(t, "Max Manager", *created.ManagerName)

	_, err = svc.Create(f.As(f.Admin), team.CreateTeamRequest{Name: "Platform"})
	assert.ErrorIs(t, err, team.ErrTeamNameExists)

	_, err = svc.Create(f.As(f.Admin), team.CreateTeamRequest{Name: "Support", ManagerID: &f.Alice.ID})
	assert.ErrorIs(t, err, team.ErrInvalidManager)
}

func TestTeamService_Update(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	resp, err := svc.Update(f.As(f.Admin), f.Team.ID, team.UpdateTeamRequest{Name: strPtr("Core"), ManagerID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Core", resp.Name)
	assert.Nil(t, resp.ManagerID)
	assert.Equal(t, 2, resp.MemberCount)
	assert.Len(t, resp.Members, 2)

	resp, err = svc.Update(f.As(f.Admin), f.Team.ID, team.UpdateTeamRequest{ManagerID: &f.Admin.ID})
	require.NoError(t, err)
	require.NotNil(t, resp.ManagerID)
	assert.Equal(t, f.Admin.ID, *resp.ManagerID)

	_, err = svc.Create(f.As(f.Admin), team.CreateTeamRequest{Name: "Design"})
	require.NoError(t, err)
	_, err = svc.Update(f.As(f.Admin), f.Team.ID, team.UpdateTeamRequest{Name: strPtr("Design")})
	assert.ErrorIs(t, err, team.ErrTeamNameExists)
}

func TestTeamService_GetAndList(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	_, err := svc.Create(f.As(f.Admin), team.CreateTeamRequest{Name: "Design"})
	require.NoError(t, err)

	resp, err := svc.Get(f.As(f.Manager), f.Team.ID)
	require.NoError(t, err)
	assert.Len(t, resp.Members, 2)

	_, err = svc.Get(f.As(f.Alice), f.Team.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	list, err := svc.List(f.As(f.Manager))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Platform", list[0].Name)
	assert.Equal(t, 2, list[0].MemberCount)

	list, err = svc.List(f.As(f.Admin))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Design", list[0].Name)

	design := list[0].ID
	_, err = svc.Get(f.As(f.Manager), design)
	assert.ErrorIs(t, err, team.ErrForbiddenTeam)
}

func TestTeamService_Members(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	resp, err := svc.AddMember(f.As(f.Admin), f.Team.ID, team.AddMemberRequest{UserID: f.Outsider.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.MemberCount)

	err = svc.RemoveMember(f.As(f.Admin), f.Team.ID, f.Outsider.ID)
	require.NoError(t, err)

	err = svc.RemoveMember(f.As(f.Admin), f.Team.ID, f.Outsider.ID)
	assert.ErrorIs(t, err, team.ErrNotTeamMember)

	_, err = svc.AddMember(f.As(f.Admin), f.Team.ID, team.AddMemberRequest{UserID: "nope"})
	assert.Error(t, err)
}

func TestTeamService_Delete(t *testing.T) {
	f := servicetest.New(t)
	svc := newTestService(f)

	require.NoError(t, svc.Delete(f.As(f.Admin), f.Team.ID))
	assert.ErrorIs(t, svc.Delete(f.As(f.Admin), f.Team.ID), team.ErrTeamNotFound)

	u, err := f.Store.Users().GetByID(f.As(f.Admin), f.Company.ID, f.Alice.ID)
	require.NoError(t, err)
	assert.Nil(t, u.TeamID)
}

func TestAccessService(t *testing.T) {
	f := servicetest.New(t)
	access := NewAccessService(f.Store.Users(), f.Store.Teams())
	ctx := f.As(f.Admin)
	actor := func(u user.User) user.Actor {
		a, err := user.ActorFromContext(f.As(u))
		require.NoError(t, err)
		return a
	}

	t.Run("AuthorizeUser", func(t *testing.T) {
		_, err := access.AuthorizeUser(ctx, actor(f.Manager), f.Alice.ID)
		assert.NoError(t, err)
		_, err = access.AuthorizeUser(ctx, actor(f.Manager), f.Outsider.ID)
		assert.ErrorIs(t, err, team.ErrForbiddenUser)
		_, err = access.AuthorizeUser(ctx, actor(f.Alice), f.Bob.ID)
		assert.ErrorIs(t, err, team.ErrForbiddenUser)
		_, err = access.AuthorizeUser(ctx, actor(f.Alice), f.Alice.ID)
		assert.NoError(t, err)
		_, err = access.AuthorizeUser(ctx, actor(f.Admin), f.Outsider.ID)
		assert.NoError(t, err)
	})

	t.Run("ScopeUsers", func(t *testing.T) {
		users, err := access.ScopeUsers(ctx, actor(f.Admin), "")
		require.NoError(t, err)
		assert.Len(t, users, 5)

		users, err = access.ScopeUsers(ctx, actor(f.Manager), "")
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = access.ScopeUsers(ctx, actor(f.Bob), "")
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, f.Bob.ID, users[0].ID)

		_, err = access.ScopeUsers(ctx, actor(f.Bob), f.Team.ID)
		assert.ErrorIs(t, err, team.ErrForbiddenTeam)
	})

	t.Run("ManagerOf", func(t *testing.T) {
		id, ok, err := access.ManagerOf(ctx, f.Company.ID, f.Alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, f.Manager.ID, id)

		_, ok, err = access.ManagerOf(ctx, f.Company.ID, f.Outsider.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
