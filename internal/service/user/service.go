package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
)

type UserServiceImpl struct {
	user.UserRepository
	team.TeamRepository
}

func NewUserService(userRepository user.UserRepository, teamRepository team.TeamRepository) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		TeamRepository: teamRepository,
	}
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Me implements user.UserService.
func (s *UserServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, actor.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := actor.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if req.TeamID != nil {
		if _, err := s.TeamRepository.GetByID(ctx, actor.CompanyID, *req.TeamID); err != nil {
			return user.UserResponse{}, err
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		CompanyID:    actor.CompanyID,
		TeamID:       req.TeamID,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         user.Role(req.Role),
		IsActive:     true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.InfoContext(ctx, "User created", "created_user_id", created.ID, "role", created.Role)
	return user.ToResponse(created), nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if id != actor.UserID {
		if err := actor.Require(user.PermissionUserManage); err != nil {
			return user.UserResponse{}, err
		}
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.UserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := actor.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.IsActive != nil && !*req.IsActive && id == actor.UserID {
		return user.UserResponse{}, user.ErrCannotDeactivateSelf
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(updated), nil
}

// Deactivate implements user.UserService. Teams managed by the user lose
// their manager.
func (s *UserServiceImpl) Deactivate(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := actor.Require(user.PermissionUserManage); err != nil {
		return err
	}
	if id == actor.UserID {
		return user.ErrCannotDeactivateSelf
	}

	u, err := s.UserRepository.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	if _, err := s.UserRepository.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	managed, err := s.TeamRepository.List(ctx, actor.CompanyID, &id)
	if err != nil {
		return fmt.Errorf("failed to list managed teams: %w", err)
	}
	for _, t := range managed {
		t.ManagerID = nil
		if _, err := s.TeamRepository.Update(ctx, t); err != nil && !errors.Is(err, team.ErrTeamNotFound) {
			return fmt.Errorf("failed to unset team manager: %w", err)
		}
	}

	slog.InfoContext(ctx, "User deactivated", "deactivated_user_id", id)
	return nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, req user.ListUserRequest) (user.ListUserResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.ListUserResponse{}, err
	}
	if err := actor.Require(user.PermissionUserManage); err != nil {
		return user.ListUserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	filter := user.UserFilter{
		CompanyID: actor.CompanyID,
		TeamID:    req.TeamID,
		Search:    req.Search,
		Active:    req.Active,
		Page:      req.Page,
		Limit:     req.Limit,
	}
	if req.Role != nil {
		role := user.Role(*req.Role)
		filter.Role = &role
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	totalPages, showing := utils.Paginate(total, req.Page, req.Limit)
	resp := user.ListUserResponse{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Users:      make([]user.UserResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, user.ToResponse(u))
	}
	return resp, nil
}
