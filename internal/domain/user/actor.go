package user

import "context"

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

func (a Actor) Can(p Permission) bool {
	return HasPermission(a.Role, p)
}

// Require returns ErrInsufficientPermissions unless the role grants p.
func (a Actor) Require(p Permission) error {
	if !a.Can(p) {
		return ErrInsufficientPermissions
	}
	return nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the caller put there by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, error) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.UserID == "" || a.CompanyID == "" {
		return Actor{}, ErrActorMissing
	}
	return a, nil
}

// SystemActor acts as a company admin for jobs and the CLI.
func SystemActor(companyID string) Actor {
	return Actor{UserID: "system", CompanyID: companyID, Role: RoleAdmin}
}
