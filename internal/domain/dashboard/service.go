package dashboard

import "context"

type DashboardService interface {
	Employee(ctx context.Context) (EmployeeDashboardResponse, error)
	// Manager covers every team the caller manages, or only teamID.
	Manager(ctx context.Context, teamID string) (ManagerDashboardResponse, error)
	Enterprise(ctx context.Context) (EnterpriseDashboardResponse, error)
}
