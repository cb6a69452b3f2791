package user

import "context"

type UserFilter struct {
	CompanyID string
	Role      *Role
	TeamID    *string
	Search    *string
	Active    *bool
	Page      int
	Limit     int
}

type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, companyID, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) (User, error)
	SetTeam(ctx context.Context, companyID, userID string, teamID *string) error
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListByTeam(ctx context.Context, companyID, teamID string) ([]User, error)
	ListActive(ctx context.Context, companyID string) ([]User, error)
}
