package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepositoryImpl{db: db}
}

const absenceSelect = `
	SELECT a.id, a.company_id, a.user_id, a.type, a.status, a.start_date, a.end_date, a.half_day,
		   a.reason, a.decided_by, a.decided_at, a.decision_note, a.created_at, a.updated_at,
		   u.full_name, d.full_name
	FROM absences a
	JOIN users u ON u.id = a.user_id
	LEFT JOIN users d ON d.id = a.decided_by
`

func scanAbsence(row pgx.Row) (absence.Absence, error) {
	var a absence.Absence
	var userName string
	err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&a.UserID,
		&a.Type,
		&a.Status,
		&a.StartDate,
		&a.EndDate,
		&a.HalfDay,
		&a.Reason,
		&a.DecidedBy,
		&a.DecidedAt,
		&a.DecisionNote,
		&a.CreatedAt,
		&a.UpdatedAt,
		&userName,
		&a.DecidedName,
	)
	if err != nil {
		return absence.Absence{}, err
	}
	a.UserName = &userName
	return a, nil
}

func collectAbsences(rows pgx.Rows) ([]absence.Absence, error) {
	defer rows.Close()

	absences := make([]absence.Absence, 0)
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

// Create implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return absence.Absence{}, err
	}

	query := `
		INSERT INTO absences (id, company_id, user_id, type, status, start_date, end_date, half_day, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = q.Exec(ctx, query, id, a.CompanyID, a.UserID, a.Type, a.Status, a.StartDate, a.EndDate, a.HalfDay, a.Reason)
	if err != nil {
		return absence.Absence{}, fmt.Errorf("failed to create absence: %w", err)
	}
	return r.GetByID(ctx, a.CompanyID, id)
}

// GetByID implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAbsence(q.QueryRow(ctx, absenceSelect+` WHERE a.id = $1 AND a.company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.Absence{}, absence.ErrAbsenceNotFound
		}
		return absence.Absence{}, fmt.Errorf("failed to get absence %s: %w", id, err)
	}
	return a, nil
}

// UpdateStatus implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) UpdateStatus(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE absences
		SET status = $1, decided_by = $2, decided_at = $3, decision_note = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6
	`
	tag, err := q.Exec(ctx, query, a.Status, a.DecidedBy, a.DecidedAt, a.DecisionNote, a.ID, a.CompanyID)
	if err != nil {
		return absence.Absence{}, fmt.Errorf("failed to update absence %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return absence.Absence{}, absence.ErrAbsenceNotFound
	}
	return r.GetByID(ctx, a.CompanyID, a.ID)
}

// LockUser implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) LockUser(ctx context.Context, userID string) error {
	return lockUserRow(ctx, GetQuerier(ctx, r.db), userID)
}

// HasOverlap implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM absences
			WHERE user_id = $1
			  AND status IN ('waiting_approval', 'approved')
			  AND start_date <= $3 AND end_date >= $2
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, userID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check absence overlap: %w", err)
	}
	return exists, nil
}

// List implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) List(ctx context.Context, filter absence.AbsenceFilter) ([]absence.Absence, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"a.company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserIDs != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.user_id = ANY($%d::uuid[])", argIdx))
		args = append(args, filter.UserIDs)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Type != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.end_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.start_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM absences a"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count absences: %w", err)
	}

	query := absenceSelect + where + " ORDER BY a.start_date DESC, a.id DESC"
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list absences: %w", err)
	}
	absences, err := collectAbsences(rows)
	if err != nil {
		return nil, 0, err
	}
	return absences, total, nil
}

// ListByUsers implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]absence.Absence, error) {
	if len(userIDs) == 0 {
		return []absence.Absence{}, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		absenceSelect+` WHERE a.user_id = ANY($1::uuid[]) AND a.start_date <= $3 AND a.end_date >= $2 ORDER BY a.start_date, a.id`,
		userIDs, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	return collectAbsences(rows)
}

// CountPending implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) CountPending(ctx context.Context, companyID string, userIDs []string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM absences WHERE company_id = $1 AND status = 'waiting_approval'`
	args := []interface{}{companyID}
	if userIDs != nil {
		query += ` AND user_id = ANY($2::uuid[])`
		args = append(args, userIDs)
	}

	var count int
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending absences: %w", err)
	}
	return count, nil
}
