package team

import "time"

type Team struct {
	ID        string
	CompanyID string
	Name      string
	ManagerID *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined
	ManagerName *string
	MemberCount int
}

func (t Team) ManagedBy(userID string) bool {
	return t.ManagerID != nil && *t.ManagerID == userID
}
