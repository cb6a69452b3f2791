package team

import (
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

type CreateTeamRequest struct {
	Name      string  `json:"name"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *CreateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must be at most 255 characters"})
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{Field: "manager_id", Message: "invalid manager id"})
	}

	return errs.Err()
}

// UpdateTeamRequest changes the name and/or manager. An empty manager_id
// removes the manager.
type UpdateTeamRequest struct {
	Name      *string `json:"name,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *UpdateTeamRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.ManagerID != nil && *r.ManagerID != "" && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{Field: "manager_id", Message: "invalid manager id"})
	}

	return errs.Err()
}

type AddMemberRequest struct {
	UserID string `json:"user_id"`
}

func (r *AddMemberRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "invalid user id"})
	}

	return errs.Err()
}

type MemberResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type TeamResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	ManagerID   *string          `json:"manager_id,omitempty"`
	ManagerName *string          `json:"manager_name,omitempty"`
	MemberCount int              `json:"member_count"`
	Members     []MemberResponse `json:"members,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

func ToResponse(t Team, members []user.User) TeamResponse {
	resp := TeamResponse{
		ID:          t.ID,
		Name:        t.Name,
		ManagerID:   t.ManagerID,
		ManagerName: t.ManagerName,
		MemberCount: t.MemberCount,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if members != nil {
		resp.MemberCount = len(members)
		resp.Members = make([]MemberResponse, 0, len(members))
		for _, m := range members {
			resp.Members = append(resp.Members, MemberResponse{
				ID:       m.ID,
				FullName: m.FullName,
				Email:    m.Email,
				Role:     string(m.Role),
			})
		}
	}
	return resp
}
