package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/memory"
	absenceservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/absence"
	authservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/auth"
	clockservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/clock"
	companyservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/company"
	dashboardservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/dashboard"
	kpiservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/kpi"
	liveservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/live"
	reportservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/report"
	"github.com/cmlabs-hris/worktime-backend-go/internal/service/servicetest"
	teamservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
	userservice "github.com/cmlabs-hris/worktime-backend-go/internal/service/user"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testAPI struct {
	*servicetest.Fixture
	Router *chi.Mux
	JWT    *jwt.JWTService
}

func newTestAPI(t *testing.T, limiter *middleware.RateLimiter) *testAPI {
	t.Helper()
	f := servicetest.New(t)
	store := f.Store
	tx := memory.Transactor{}

	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour, time.Minute)
	access := teamservice.NewAccessService(store.Users(), store.Teams())
	liveService := liveservice.NewLiveService(sse.NewHub(), jwtService, access)
	companyService := companyservice.NewCompanyService(store.Companies(), store.Holidays())
	clockService := clockservice.NewClockService(tx, store.Events(), store.Absences(), companyService, access, liveService, f.Clock)
	calc := kpiservice.NewCalculator(store.Events(), store.Absences(), companyService, f.Clock)

	handlers := Handlers{
		Auth:    NewAuthHandler(authservice.NewAuthService(tx, store.Users(), store.Companies(), jwtService, timeaccount.DefaultPolicy())),
		User:    NewUserHandler(userservice.NewUserService(store.Users(), store.Teams())),
		Company: NewCompanyHandler(companyService),
		Team:    NewTeamHandler(teamservice.NewTeamService(store.Teams(), store.Users(), access)),
		Clock:   NewClockHandler(clockService),
		Absence: NewAbsenceHandler(absenceservice.NewAbsenceService(tx, store.Absences(), companyService, access, liveService, f.Clock)),
		KPI:     NewKPIHandler(kpiservice.NewKPIService(calc, store.Users(), store.Teams(), access, f.Clock)),
		Dashboard: NewDashboardHandler(dashboardservice.NewDashboardService(
			clockService, calc, access, store.Users(), store.Teams(), store.Absences(), f.Clock)),
		Report: NewReportHandler(reportservice.NewReportService(calc, access, store.Absences(), f.Clock)),
		Live:   NewLiveHandler(liveService, time.Minute),
	}

	router := NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:4200"},
		LoginLimiter:   limiter,
	}, jwtService, store.Users(), handlers)

	return &testAPI{Fixture: f, Router: router, JWT: jwtService}
}

func (a *testAPI) token(t *testing.T, u user.User) string {
	t.Helper()
	token, _, err := a.JWT.GenerateAccessToken(jwt.Claims{UserID: u.ID, CompanyID: u.CompanyID, Role: string(u.Role)})
	require.NoError(t, err)
	return token
}

// do sends a request as u, or anonymously when u is nil.
func (a *testAPI) do(t *testing.T, u *user.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, *u))
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
