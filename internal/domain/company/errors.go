package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrHolidayExists   = errors.New("a holiday already exists on this date")
)
