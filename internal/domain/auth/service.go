package auth

import "context"

type AuthService interface {
	// Register creates a company together with its first admin.
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
}
