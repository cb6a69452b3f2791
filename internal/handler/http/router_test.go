package http

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/live"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/middleware"
)

func TestRouter_Authentication(t *testing.T) {
	api := newTestAPI(t, nil)

	t.Run("missing token", func(t *testing.T) {
		w := api.do(t, nil, http.MethodGet, "/api/v1/users/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := api.do(t, &api.Alice, http.MethodGet, "/api/v1/users/me", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var me user.UserResponse
		decodeEnvelope(t, w, &me)
		assert.Equal(t, "Alice Anders", me.FullName)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("stream token rejected", func(t *testing.T) {
		token, _, err := api.JWT.GenerateStreamToken(api.Alice.ID)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		api.Router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated user", func(t *testing.T) {
		bob := api.Bob
		bob.IsActive = false
		_, err := api.Store.Users().Update(context.Background(), bob)
		require.NoError(t, err)

		w := api.do(t, &api.Bob, http.MethodGet, "/api/v1/users/me", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRouter_Permissions(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name   string
		as     user.User
		method string
		path   string
		want   int
	}{
		{"employee lists users", api.Alice, http.MethodGet, "/api/v1/users", http.StatusForbidden},
		{"admin lists users", api.Admin, http.MethodGet, "/api/v1/users", http.StatusOK},
		{"manager reads enterprise dashboard", api.Manager, http.MethodGet, "/api/v1/dashboard/enterprise", http.StatusForbidden},
		{"manager reads manager dashboard", api.Manager, http.MethodGet, "/api/v1/dashboard/manager", http.StatusOK},
		{"employee reads own dashboard", api.Alice, http.MethodGet, "/api/v1/dashboard/employee", http.StatusOK},
		{"employee reads reports", api.Alice, http.MethodGet, "/api/v1/reports/timesheet?month=3&year=2025", http.StatusForbidden},
		{"manager reads foreign user kpi", api.Manager, http.MethodGet, "/api/v1/kpi/users/" + api.Outsider.ID, http.StatusForbidden},
		{"manager reads member kpi", api.Manager, http.MethodGet, "/api/v1/kpi/users/" + api.Alice.ID, http.StatusOK},
		{"employee reads company", api.Alice, http.MethodGet, "/api/v1/company", http.StatusOK},
		{"manager updates policy", api.Manager, http.MethodPut, "/api/v1/company/policy", http.StatusForbidden},
		{"unknown team", api.Admin, http.MethodGet, "/api/v1/teams/0195d2a8-7c1e-7000-8000-000000000000", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, &tt.as, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestClockHandler_Flow(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, &api.Alice, http.MethodPost, "/api/v1/clock/in", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, &api.Alice, http.MethodPost, "/api/v1/clock/in", map[string]string{"note": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, &api.Alice, http.MethodGet, "/api/v1/clock/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status clock.StatusResponse
	decodeEnvelope(t, w, &status)
	assert.True(t, status.ClockedIn)
	assert.Equal(t, "clocked_in", status.Status)

	w = api.do(t, &api.Bob, http.MethodPost, "/api/v1/clock/out", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, &api.Manager, http.MethodGet, "/api/v1/clock/events?user_id="+api.Alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list clock.ListEventsResponse
	decodeEnvelope(t, w, &list)
	assert.Equal(t, int64(1), list.TotalCount)

	note := "forgot to clock in"
	w = api.do(t, &api.Manager, http.MethodPost, "/api/v1/clock/events", clock.ManualEventRequest{
		UserID: api.Bob.ID,
		Type:   "IN",
		At:     "2025-03-12T11:00:00Z",
		Note:   &note,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAbsenceHandler_Flow(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, &api.Alice, http.MethodPost, "/api/v1/absences", absence.CreateAbsenceRequest{
		Type:      "vacation",
		StartDate: "2025-03-20",
		EndDate:   "2025-03-21",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created absence.AbsenceResponse
	decodeEnvelope(t, w, &created)
	assert.Equal(t, "waiting_approval", created.Status)

	w = api.do(t, &api.Alice, http.MethodPost, "/api/v1/absences/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, &api.Manager, http.MethodPost, "/api/v1/absences/"+created.ID+"/reject", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(t, &api.Manager, http.MethodPost, "/api/v1/absences/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, &api.Manager, http.MethodPost, "/api/v1/absences/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, &api.Alice, http.MethodGet, "/api/v1/absences/my?status=approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list absence.ListAbsenceResponse
	decodeEnvelope(t, w, &list)
	assert.Equal(t, int64(1), list.TotalCount)

	w = api.do(t, &api.Bob, http.MethodGet, "/api/v1/absences/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, &api.Admin, http.MethodGet, "/api/v1/absences/0195d2a8-7c1e-7000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardHandler_Employee(t *testing.T) {
	api := newTestAPI(t, nil)

	require.Equal(t, http.StatusCreated, api.do(t, &api.Alice, http.MethodPost, "/api/v1/clock/in", nil).Code)

	w := api.do(t, &api.Alice, http.MethodGet, "/api/v1/dashboard/employee", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var board dashboard.EmployeeDashboardResponse
	decodeEnvelope(t, w, &board)
	assert.True(t, board.Today.ClockedIn)
	assert.Len(t, board.Week, 7)
}

func TestReportHandler_ExportTimesheet(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.do(t, &api.Admin, http.MethodGet, "/api/v1/reports/timesheet/export?month=3&year=2025", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timesheet-2025-03.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, "Name", records[0][0])
	assert.Equal(t, "Total", records[6][0])

	w = api.do(t, &api.Admin, http.MethodGet, "/api/v1/reports/timesheet/export?month=13&year=2025", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(t, &api.Admin, http.MethodGet, "/api/v1/reports/timesheet?month=march&year=2025", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiveHandler_Stream(t *testing.T) {
	api := newTestAPI(t, nil)
	server := httptest.NewServer(api.Router)
	defer server.Close()

	w := api.do(t, &api.Alice, http.MethodPost, "/api/v1/live/token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var token live.StreamTokenResponse
	decodeEnvelope(t, w, &token)

	resp, err := http.Get(server.URL + "/api/v1/live/stream?token=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/live/stream?token=%s", server.URL, token.Token), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), "event: ") {
				return strings.TrimPrefix(lines.Text(), "event: ")
			}
		}
		return ""
	}

	require.Equal(t, "connected", next())

	require.Equal(t, http.StatusCreated, api.do(t, &api.Alice, http.MethodPost, "/api/v1/clock/in", nil).Code)
	assert.Equal(t, "presence.changed", next())
}
