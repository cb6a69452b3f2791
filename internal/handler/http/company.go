package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/response"
)

type CompanyHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	UpdatePolicy(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{companyService: companyService}
}

// Get implements CompanyHandler.
func (c *CompanyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := c.companyService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// UpdatePolicy implements CompanyHandler.
func (c *CompanyHandlerImpl) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req company.UpdatePolicyRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := c.companyService.UpdatePolicy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Work policy updated successfully", result)
}

// CreateHoliday implements CompanyHandler.
func (c *CompanyHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req company.CreateHolidayRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := c.companyService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Holiday created successfully", result)
}

// ListHolidays implements CompanyHandler. Defaults to the current year.
func (c *CompanyHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", time.Now().Year())
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return
	}

	result, err := c.companyService.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// DeleteHoliday implements CompanyHandler.
func (c *CompanyHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := c.companyService.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
