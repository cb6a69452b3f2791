package team

import "context"

type TeamRepository interface {
	Create(ctx context.Context, t Team) (Team, error)
	GetByID(ctx context.Context, companyID, id string) (Team, error)
	Update(ctx context.Context, t Team) (Team, error)
	Delete(ctx context.Context, companyID, id string) error
	// List returns the company's teams, or only those managed by managerID.
	List(ctx context.Context, companyID string, managerID *string) ([]Team, error)
}
