package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/kpi"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type KPIHandler interface {
	Me(w http.ResponseWriter, r *http.Request)
	User(w http.ResponseWriter, r *http.Request)
	Team(w http.ResponseWriter, r *http.Request)
	Company(w http.ResponseWriter, r *http.Request)
}

type kpiHandlerImpl struct {
	kpiService kpi.KPIService
}

func NewKPIHandler(kpiService kpi.KPIService) KPIHandler {
	return &kpiHandlerImpl{kpiService: kpiService}
}

func periodFromQuery(r *http.Request) kpi.PeriodRequest {
	return kpi.PeriodRequest{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
	}
}

// Me handles GET /kpi/me
func (h *kpiHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.Me(r.Context(), periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// User handles GET /kpi/users/{id}
func (h *kpiHandlerImpl) User(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.ForUser(r.Context(), chi.URLParam(r, "id"), periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Team handles GET /kpi/teams/{id}
func (h *kpiHandlerImpl) Team(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.ForTeam(r.Context(), chi.URLParam(r, "id"), periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Company handles GET /kpi/company
func (h *kpiHandlerImpl) Company(w http.ResponseWriter, r *http.Request) {
	result, err := h.kpiService.ForCompany(r.Context(), periodFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
