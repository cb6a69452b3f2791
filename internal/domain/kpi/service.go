package kpi

import (
	"context"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

type KPIService interface {
	Me(ctx context.Context, req PeriodRequest) (UserKPIResponse, error)
	ForUser(ctx context.Context, userID string, req PeriodRequest) (UserKPIResponse, error)
	ForTeam(ctx context.Context, teamID string, req PeriodRequest) (TeamKPIResponse, error)
	ForCompany(ctx context.Context, req PeriodRequest) (CompanyKPIResponse, error)
}

// UserSummary pairs a user with their time account.
type UserSummary struct {
	User    user.User
	Summary timeaccount.Summary
}

// Calculator loads clocks and absences for a set of users and folds them
// into per-user summaries. Dashboards and reports share it with KPIService.
type Calculator interface {
	Policy(ctx context.Context, companyID string) (timeaccount.Policy, error)
	Summaries(ctx context.Context, companyID string, users []user.User, period timeaccount.Period) ([]UserSummary, timeaccount.Policy, error)
}
