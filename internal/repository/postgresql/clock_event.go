package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

type clockEventRepositoryImpl struct {
	db *database.DB
}

func NewClockEventRepository(db *database.DB) clock.EventRepository {
	return &clockEventRepositoryImpl{db: db}
}

const clockEventSelect = `
	SELECT e.id, e.company_id, e.user_id, e.type, e.at, e.source, e.note, e.created_by, e.created_at, u.full_name
	FROM clock_events e
	JOIN users u ON u.id = e.user_id
`

func scanClockEvent(row pgx.Row) (clock.Event, error) {
	var e clock.Event
	var userName string
	err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.UserID,
		&e.Type,
		&e.At,
		&e.Source,
		&e.Note,
		&e.CreatedBy,
		&e.CreatedAt,
		&userName,
	)
	if err != nil {
		return clock.Event{}, err
	}
	e.UserName = &userName
	return e, nil
}

func collectClockEvents(rows pgx.Rows) ([]clock.Event, error) {
	defer rows.Close()

	events := make([]clock.Event, 0)
	for rows.Next() {
		e, err := scanClockEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clock event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create implements clock.EventRepository.
func (r *clockEventRepositoryImpl) Create(ctx context.Context, e clock.Event) (clock.Event, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return clock.Event{}, err
	}

	query := `
		INSERT INTO clock_events (id, company_id, user_id, type, at, source, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.Exec(ctx, query, id, e.CompanyID, e.UserID, e.Type, e.At, e.Source, e.Note, e.CreatedBy)
	if err != nil {
		return clock.Event{}, fmt.Errorf("failed to create clock event: %w", err)
	}
	return r.GetByID(ctx, e.CompanyID, id)
}

// GetByID implements clock.EventRepository.
func (r *clockEventRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (clock.Event, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanClockEvent(q.QueryRow(ctx, clockEventSelect+` WHERE e.id = $1 AND e.company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clock.Event{}, clock.ErrEventNotFound
		}
		return clock.Event{}, fmt.Errorf("failed to get clock event %s: %w", id, err)
	}
	return e, nil
}

// Delete implements clock.EventRepository.
func (r *clockEventRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM clock_events WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete clock event %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return clock.ErrEventNotFound
	}
	return nil
}

// LockUser implements clock.EventRepository.
func (r *clockEventRepositoryImpl) LockUser(ctx context.Context, userID string) error {
	return lockUserRow(ctx, GetQuerier(ctx, r.db), userID)
}

// Last implements clock.EventRepository.
func (r *clockEventRepositoryImpl) Last(ctx context.Context, userID string) (clock.Event, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanClockEvent(q.QueryRow(ctx,
		clockEventSelect+` WHERE e.user_id = $1 ORDER BY e.at DESC, e.id DESC LIMIT 1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return clock.Event{}, clock.ErrEventNotFound
		}
		return clock.Event{}, fmt.Errorf("failed to get last clock event: %w", err)
	}
	return e, nil
}

// ListByUsers implements clock.EventRepository.
func (r *clockEventRepositoryImpl) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]clock.Event, error) {
	if len(userIDs) == 0 {
		return []clock.Event{}, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		clockEventSelect+` WHERE e.user_id = ANY($1::uuid[]) AND e.at >= $2 AND e.at < $3 ORDER BY e.at, e.id`,
		userIDs, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock events: %w", err)
	}
	return collectClockEvents(rows)
}

// List implements clock.EventRepository.
func (r *clockEventRepositoryImpl) List(ctx context.Context, filter clock.EventFilter) ([]clock.Event, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"e.company_id = $1"}
	args := []interface{}{filter.CompanyID}
	argIdx := 2

	if filter.UserIDs != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("e.user_id = ANY($%d::uuid[])", argIdx))
		args = append(args, filter.UserIDs)
		argIdx++
	}
	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("e.at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("e.at < $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	where := " WHERE " + strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM clock_events e"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clock events: %w", err)
	}

	query := clockEventSelect + where + " ORDER BY e.at DESC, e.id DESC"
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
		return nil, 0, fmt.Errorf("failed to list clock events: %w", err)
	}
	events, err := collectClockEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListStale implements clock.EventRepository.
func (r *clockEventRepositoryImpl) ListStale(ctx context.Context, before time.Time) ([]clock.StaleSession, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id, user_id, id, at
		FROM (
			SELECT DISTINCT ON (user_id) company_id, user_id, id, type, at
			FROM clock_events
			ORDER BY user_id, at DESC, id DESC
		) latest
		WHERE type = 'IN' AND at < $1
		ORDER BY at
	`
	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]clock.StaleSession, 0)
	for rows.Next() {
		var s clock.StaleSession
		if err := rows.Scan(&s.CompanyID, &s.UserID, &s.InEventID, &s.Start); err != nil {
			return nil, fmt.Errorf("failed to scan stale session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
