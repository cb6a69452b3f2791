package company

import (
	"context"
	"time"
)

type CompanyRepository interface {
	Create(ctx context.Context, c Company) (Company, error)
	GetByID(ctx context.Context, id string) (Company, error)
	UpdatePolicy(ctx context.Context, c Company) (Company, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	Delete(ctx context.Context, companyID, id string) error
	// List returns holidays within [from, to] ordered by date.
	List(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
}
