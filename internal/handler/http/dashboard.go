package http

import (
	"net/http"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// Employee returns the caller's own dashboard
	Employee(w http.ResponseWriter, r *http.Request)
	// Manager returns the managed teams, or one team with ?team_id
	Manager(w http.ResponseWriter, r *http.Request)
	// Enterprise returns the company-wide dashboard
	Enterprise(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// Employee handles GET /dashboard/employee
func (h *dashboardHandlerImpl) Employee(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.Employee(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Manager handles GET /dashboard/manager
func (h *dashboardHandlerImpl) Manager(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team_id")

	result, err := h.dashboardService.Manager(r.Context(), teamID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Enterprise handles GET /dashboard/enterprise
func (h *dashboardHandlerImpl) Enterprise(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.Enterprise(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
