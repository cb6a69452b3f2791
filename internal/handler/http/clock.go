package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type ClockHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	CreateManual(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type clockHandlerImpl struct {
	clockService clock.ClockService
}

func NewClockHandler(clockService clock.ClockService) ClockHandler {
	return &clockHandlerImpl{clockService: clockService}
}

// ClockIn handles POST /clock/in. The body is optional.
func (h *clockHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req clock.ClockRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.clockService.ClockIn(r.Context(), req)
	if err != nil {
		slog.WarnContext(r.Context(), "Clock in rejected", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clocked in successfully", result)
}

// ClockOut handles POST /clock/out. The body is optional.
func (h *clockHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req clock.ClockRequest
	if err := decodeJSON(r, &req, true); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.clockService.ClockOut(r.Context(), req)
	if err != nil {
		slog.WarnContext(r.Context(), "Clock out rejected", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clocked out successfully", result)
}

// Status handles GET /clock/status
func (h *clockHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.clockService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func parseListEvents(r *http.Request) (clock.ListEventsRequest, error) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return clock.ListEventsRequest{}, err
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		return clock.ListEventsRequest{}, err
	}
	return clock.ListEventsRequest{
		UserID:    queryString(r, "user_id"),
		TeamID:    queryString(r, "team_id"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      page,
		Limit:     limit,
	}, nil
}

// ListMine handles GET /clock/events/my
func (h *clockHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	req, err := parseListEvents(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameter", nil)
		return
	}

	result, err := h.clockService.ListMine(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List handles GET /clock/events
func (h *clockHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req, err := parseListEvents(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameter", nil)
		return
	}

	result, err := h.clockService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CreateManual handles POST /clock/events
func (h *clockHandlerImpl) CreateManual(w http.ResponseWriter, r *http.Request) {
	var req clock.ManualEventRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.clockService.CreateManual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Clock event created successfully", result)
}

// Delete handles DELETE /clock/events/{id}
func (h *clockHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clockService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Clock event deleted successfully", nil)
}
