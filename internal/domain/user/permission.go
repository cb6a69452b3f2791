package user

type Permission string

const (
	// Self service
	PermissionClockOwn   Permission = "clock.own"
	PermissionAbsenceOwn Permission = "absence.own"
	PermissionKPIOwn     Permission = "kpi.own"

	// Team scope
	PermissionClockViewTeam   Permission = "clock.view_team"
	PermissionClockManage     Permission = "clock.manage"
	PermissionAbsenceViewTeam Permission = "absence.view_team"
	PermissionAbsenceApprove  Permission = "absence.approve"
	PermissionKPIViewTeam     Permission = "kpi.view_team"
	PermissionTeamView        Permission = "team.view"
	PermissionDashboardTeam   Permission = "dashboard.team"
	PermissionReportsView     Permission = "reports.view"

	// Company scope
	PermissionKPIViewCompany      Permission = "kpi.view_company"
	PermissionDashboardEnterprise Permission = "dashboard.enterprise"
	PermissionTeamManage          Permission = "team.manage"
	PermissionUserManage          Permission = "user.manage"
	PermissionCompanyManage       Permission = "company.manage"
)

var employeePermissions = []Permission{
	PermissionClockOwn,
	PermissionAbsenceOwn,
	PermissionKPIOwn,
}

var managerPermissions = append(append([]Permission{}, employeePermissions...),
	PermissionClockViewTeam,
	PermissionClockManage,
	PermissionAbsenceViewTeam,
	PermissionAbsenceApprove,
	PermissionKPIViewTeam,
	PermissionTeamView,
	PermissionDashboardTeam,
	PermissionReportsView,
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: append(append([]Permission{}, managerPermissions...),
		PermissionKPIViewCompany,
		PermissionDashboardEnterprise,
		PermissionTeamManage,
		PermissionUserManage,
		PermissionCompanyManage,
	),
	RoleManager:  managerPermissions,
	RoleEmployee: employeePermissions,
}

func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
