package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type TeamHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	AddMember(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
}

type teamHandlerImpl struct {
	teamService team.TeamService
}

func NewTeamHandler(teamService team.TeamService) TeamHandler {
	return &teamHandlerImpl{teamService: teamService}
}

// Create handles POST /teams
func (h *teamHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req team.CreateTeamRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.teamService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team created successfully", result)
}

// List handles GET /teams
func (h *teamHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.teamService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Get handles GET /teams/{id}
func (h *teamHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.teamService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Update handles PUT /teams/{id}
func (h *teamHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req team.UpdateTeamRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.teamService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated successfully", result)
}

// Delete handles DELETE /teams/{id}
func (h *teamHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team deleted successfully", nil)
}

// AddMember handles POST /teams/{id}/members
func (h *teamHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	var req team.AddMemberRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.teamService.AddMember(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member added successfully", result)
}

// RemoveMember handles DELETE /teams/{id}/members/{userID}
func (h *teamHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member removed successfully", nil)
}
