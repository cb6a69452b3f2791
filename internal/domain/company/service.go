package company

import (
	"context"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

type CompanyService interface {
	PolicyProvider
	Get(ctx context.Context) (CompanyResponse, error)
	UpdatePolicy(ctx context.Context, req UpdatePolicyRequest) (CompanyResponse, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
}

// PolicyProvider resolves the work policy every time computation runs
// against.
type PolicyProvider interface {
	PolicyFor(ctx context.Context, companyID string) (timeaccount.Policy, error)
}
