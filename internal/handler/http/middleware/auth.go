package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/logging"
)

// AuthRequired turns verified access-token claims into the request actor.
// Users deactivated after the token was issued are rejected.
func AuthRequired(users user.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			c, err := jwt.ClaimsFromMap(claims)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			u, err := users.GetByID(r.Context(), c.CompanyID, c.UserID)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if !u.IsActive {
				response.HandleError(w, user.ErrUserInactive)
				return
			}

			ctx := user.WithActor(r.Context(), user.Actor{
				UserID:    u.ID,
				CompanyID: u.CompanyID,
				Role:      u.Role,
			})
			ctx = logging.WithUserID(ctx, u.ID)
			ctx = logging.WithCompanyID(ctx, u.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
