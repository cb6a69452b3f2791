package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

const companyColumns = `id, name, timezone, workday_start, grace_minutes, daily_minutes, working_days, created_at, updated_at`

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	var days []int32
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Timezone,
		&c.WorkdayStart,
		&c.GraceMinutes,
		&c.DailyMinutes,
		&days,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return company.Company{}, err
	}
	c.WorkingDays = weekdaysFromInts(days)
	return c, nil
}

func weekdaysFromInts(days []int32) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

func weekdaysToInts(days []time.Weekday) []int32 {
	out := make([]int32, 0, len(days))
	for _, d := range days {
		out = append(out, int32(d))
	}
	return out
}

// Create implements company.CompanyRepository.
func (r *companyRepositoryImpl) Create(ctx context.Context, c company.Company) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return company.Company{}, err
	}

	query := `
		INSERT INTO companies (id, name, timezone, workday_start, grace_minutes, daily_minutes, working_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + companyColumns

	created, err := scanCompany(q.QueryRow(ctx, query,
		id, c.Name, c.Timezone, c.WorkdayStart, c.GraceMinutes, c.DailyMinutes, weekdaysToInts(c.WorkingDays),
	))
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return created, nil
}

// GetByID implements company.CompanyRepository.
func (r *companyRepositoryImpl) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompany(q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company %s: %w", id, err)
	}
	return c, nil
}

// UpdatePolicy implements company.CompanyRepository.
func (r *companyRepositoryImpl) UpdatePolicy(ctx context.Context, c company.Company) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE companies
		SET name = $1, timezone = $2, workday_start = $3, grace_minutes = $4,
			daily_minutes = $5, working_days = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + companyColumns

	updated, err := scanCompany(q.QueryRow(ctx, query,
		c.Name, c.Timezone, c.WorkdayStart, c.GraceMinutes, c.DailyMinutes, weekdaysToInts(c.WorkingDays), c.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to update company %s: %w", c.ID, err)
	}
	return updated, nil
}

// ListIDs implements company.CompanyRepository.
func (r *companyRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}
	return ids, nil
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) company.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements company.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h company.Holiday) (company.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return company.Holiday{}, err
	}

	query := `
		INSERT INTO company_holidays (id, company_id, date, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, date, name, created_at
	`
	var created company.Holiday
	err = q.QueryRow(ctx, query, id, h.CompanyID, h.Date, h.Name).Scan(
		&created.ID, &created.CompanyID, &created.Date, &created.Name, &created.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return company.Holiday{}, company.ErrHolidayExists
		}
		return company.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return created, nil
}

// Delete implements company.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM company_holidays WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrHolidayNotFound
	}
	return nil
}

// List implements company.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, companyID string, from, to time.Time) ([]company.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, date, name, created_at
		FROM company_holidays
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]company.Holiday, 0)
	for rows.Next() {
		var h company.Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
