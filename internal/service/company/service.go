package company

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
)

// Holidays from this window feed every policy; reports never reach outside it.
var (
	holidayWindowStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	holidayWindowEnd   = time.Date(2200, 12, 31, 0, 0, 0, 0, time.UTC)
)

type CompanyServiceImpl struct {
	company.CompanyRepository
	company.HolidayRepository
}

func NewCompanyService(companyRepository company.CompanyRepository, holidayRepository company.HolidayRepository) company.CompanyService {
	return &CompanyServiceImpl{
		CompanyRepository: companyRepository,
		HolidayRepository: holidayRepository,
	}
}

// PolicyFor implements company.PolicyProvider.
func (s *CompanyServiceImpl) PolicyFor(ctx context.Context, companyID string) (timeaccount.Policy, error) {
	c, err := s.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return timeaccount.Policy{}, err
	}

	holidays, err := s.HolidayRepository.List(ctx, companyID, holidayWindowStart, holidayWindowEnd)
	if err != nil {
		return timeaccount.Policy{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	return c.Policy(holidays)
}

// Get implements company.CompanyService.
func (s *CompanyServiceImpl) Get(ctx context.Context) (company.CompanyResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	c, err := s.CompanyRepository.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return company.ToResponse(c), nil
}

// UpdatePolicy implements company.CompanyService.
func (s *CompanyServiceImpl) UpdatePolicy(ctx context.Context, req company.UpdatePolicyRequest) (company.CompanyResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if err := actor.Require(user.PermissionCompanyManage); err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	c, err := s.CompanyRepository.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	req.Apply(&c)

	updated, err := s.CompanyRepository.UpdatePolicy(ctx, c)
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to update policy: %w", err)
	}
	return company.ToResponse(updated), nil
}

// CreateHoliday implements company.CompanyService.
func (s *CompanyServiceImpl) CreateHoliday(ctx context.Context, req company.CreateHolidayRequest) (company.HolidayResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return company.HolidayResponse{}, err
	}
	if err := actor.Require(user.PermissionCompanyManage); err != nil {
		return company.HolidayResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.HolidayResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	h, err := s.HolidayRepository.Create(ctx, company.Holiday{
		CompanyID: actor.CompanyID,
		Date:      date,
		Name:      req.Name,
	})
	if err != nil {
		return company.HolidayResponse{}, err
	}
	return company.ToHolidayResponse(h), nil
}

// ListHolidays implements company.CompanyService.
func (s *CompanyServiceImpl) ListHolidays(ctx context.Context, year int) ([]company.HolidayResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	holidays, err := s.HolidayRepository.List(ctx, actor.CompanyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	resp := make([]company.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, company.ToHolidayResponse(h))
	}
	return resp, nil
}

// DeleteHoliday implements company.CompanyService.
func (s *CompanyServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if err := actor.Require(user.PermissionCompanyManage); err != nil {
		return err
	}
	return s.HolidayRepository.Delete(ctx, actor.CompanyID, id)
}
