package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterRequest

	if err := decodeJSON(r, &registerReq, false); err != nil {
		slog.ErrorContext(r.Context(), "Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	authResponse, err := a.authService.Register(r.Context(), registerReq)
	if err != nil {
		slog.ErrorContext(r.Context(), "Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Company registered successfully")
	response.Created(w, "Company registered successfully", authResponse)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := decodeJSON(r, &loginReq, false); err != nil {
		slog.ErrorContext(r.Context(), "Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	authResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User logged in successfully", authResponse)
}
