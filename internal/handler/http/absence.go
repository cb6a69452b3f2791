package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type AbsenceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type absenceHandlerImpl struct {
	absenceService absence.AbsenceService
}

func NewAbsenceHandler(absenceService absence.AbsenceService) AbsenceHandler {
	return &absenceHandlerImpl{absenceService: absenceService}
}

// Create handles POST /absences
func (h *absenceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req absence.CreateAbsenceRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.absenceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Absence requested successfully", result)
}

func parseListAbsences(r *http.Request) (absence.ListAbsenceRequest, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return absence.ListAbsenceRequest{}, err
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		return absence.ListAbsenceRequest{}, err
	}
	return absence.ListAbsenceRequest{
		UserID:    queryString(r, "user_id"),
		TeamID:    queryString(r, "team_id"),
		Status:    queryString(r, "status"),
		Type:      queryString(r, "type"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      page,
		Limit:     limit,
	}, nil
}

// ListMine handles GET /absences/my
func (h *absenceHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	req, err := parseListAbsences(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameter", nil)
		return
	}

	result, err := h.absenceService.ListMine(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List handles GET /absences
func (h *absenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListAbsences(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameter", nil)
		return
	}

	result, err := h.absenceService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get handles GET /absences/{id}
func (h *absenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.absenceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Approve handles POST /absences/{id}/approve
func (h *absenceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req absence.DecisionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.absenceService.Approve(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Absence approved successfully", result)
}

// Reject handles POST /absences/{id}/reject
func (h *absenceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req absence.DecisionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.absenceService.Reject(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Absence rejected successfully", result)
}

// Cancel handles POST /absences/{id}/cancel
func (h *absenceHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.absenceService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Absence cancelled successfully", result)
}
