package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
)

func newTestService(store *memory.Store) (auth.AuthService, *jwt.JWTService) {
	jwtService := jwt.NewJWTService("test-secret", time.Hour, time.Minute)
	svc := NewAuthService(memory.Transactor{}, store.Users(), store.Companies(), jwtService, timeaccount.DefaultPolicy())
	return svc, jwtService
}

func TestAuthService_Register(t *testing.T) {
	store := memory.NewStore()
	svc, jwtService := newTestService(store)

	resp, err := svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName: "Globex",
		FullName:    "Hank Scorpio",
		Email:       "Hank@Globex.test",
		Password:    "volcano-lair",
		Timezone:    "Europe/Berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Role)
	assert.Equal(t, "hank@globex.test", resp.User.Email)

	c, err := store.Companies().GetByID(context.Background(), resp.User.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", c.Name)
	assert.Equal(t, "Europe/Berlin", c.Timezone)
	assert.Equal(t, 9*60, c.WorkdayStart)
	assert.Len(t, c.WorkingDays, 5)

	token, err := jwtauth.VerifyToken(jwtService.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	claims, err := jwt.ClaimsFromMap(token.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(user.RoleAdmin), claims.Role)

	_, err = svc.Register(context.Background(), auth.RegisterRequest{
		CompanyName: "Globex Two",
		FullName:    "Hank Again",
		Email:       "hank@globex.test",
		Password:    "volcano-lair",
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAuthService_Register_Invalid(t *testing.T) {
	svc, _ := newTestService(memory.NewStore())

	_, err := svc.Register(context.Background(), auth.RegisterRequest{Email: "x", Password: "short", Timezone: "Mars/Base"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 5)
}

func TestAuthService_Login(t *testing.T) {
	f := servicetest.New(t)
	svc, _ := newTestService(f.Store)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: f.Alice.Email, Password: servicetest.Password})
	require.NoError(t, err)
	assert.Equal(t, f.Alice.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(context.Background(), auth.LoginRequest{Email: f.Alice.Email, Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@acme.test", Password: servicetest.Password})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	bob := f.Bob
	bob.IsActive = false
	_, err = f.Store.Users().Update(context.Background(), bob)
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), auth.LoginRequest{Email: f.Bob.Email, Password: servicetest.Password})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}
