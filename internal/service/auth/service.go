package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	userservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/user"
)

type AuthServiceImpl struct {
	user.UserRepository
	company.CompanyRepository
	jwt.Service
	tx            database.Transactor
	defaultPolicy timeaccount.Policy
}

// NewAuthService builds the auth service. New companies start with
// defaultPolicy.
func NewAuthService(
	tx database.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	jwtService jwt.Service,
	defaultPolicy timeaccount.Policy,
) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository:    userRepository,
		CompanyRepository: companyRepository,
		Service:           jwtService,
		tx:                tx,
		defaultPolicy:     defaultPolicy,
	}
}

func (s *AuthServiceImpl) issue(u user.User) (auth.AuthResponse, error) {
	token, expiresAt, err := s.Service.GenerateAccessToken(jwt.Claims{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		Role:      string(u.Role),
	})
	if err != nil {
		return auth.AuthResponse{}, err
	}
	return auth.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(u),
	}, nil
}

// Register implements auth.AuthService.
func (s *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AuthResponse{}, err
	}

	hash, err := userservice.HashPassword(req.Password)
	if err != nil {
		return auth.AuthResponse{}, err
	}

	timezone := s.defaultPolicy.Loc().String()
	if req.Timezone != "" {
		timezone = req.Timezone
	}

	var admin user.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.CompanyRepository.Create(ctx, company.Company{
			Name:         req.CompanyName,
			Timezone:     timezone,
			WorkdayStart: s.defaultPolicy.WorkdayStart,
			GraceMinutes: s.defaultPolicy.GraceMinutes,
			DailyMinutes: s.defaultPolicy.DailyMinutes,
			WorkingDays:  s.defaultPolicy.WorkingDays,
		})
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}

		admin, err = s.UserRepository.Create(ctx, user.User{
			CompanyID:    c.ID,
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			Role:         user.RoleAdmin,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return auth.AuthResponse{}, err
	}

	slog.InfoContext(ctx, "Company registered", "company_id", admin.CompanyID, "admin_id", admin.ID)
	return s.issue(admin)
}

// Login implements auth.AuthService.
func (s *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AuthResponse{}, err
	}

	u, err := s.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AuthResponse{}, auth.ErrInvalidCredentials
		}
		return auth.AuthResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.AuthResponse{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return auth.AuthResponse{}, auth.ErrAccountInactive
	}

	return s.issue(u)
}
