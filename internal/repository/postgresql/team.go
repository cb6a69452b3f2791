package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
)

type teamRepositoryImpl struct {
	db *database.DB
}

func NewTeamRepository(db *database.DB) team.TeamRepository {
	return &teamRepositoryImpl{db: db}
}

const teamSelect = `
	SELECT t.id, t.company_id, t.name, t.manager_id, t.created_at, t.updated_at, m.full_name,
		   (SELECT COUNT(*) FROM users u WHERE u.team_id = t.id AND u.is_active)
	FROM teams t
	LEFT JOIN users m ON m.id = t.manager_id
`

func scanTeam(row pgx.Row) (team.Team, error) {
	var t team.Team
	err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.ManagerID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ManagerName,
		&t.MemberCount,
	)
	return t, err
}

// Create implements team.TeamRepository.
func (r *teamRepositoryImpl) Create(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return team.Team{}, err
	}

	_, err = q.Exec(ctx,
		`INSERT INTO teams (id, company_id, name, manager_id) VALUES ($1, $2, $3, $4)`,
		id, t.CompanyID, t.Name, t.ManagerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, team.ErrTeamNameExists
		}
		return team.Team{}, fmt.Errorf("failed to create team: %w", err)
	}
	return r.GetByID(ctx, t.CompanyID, id)
}

// GetByID implements team.TeamRepository.
func (r *teamRepositoryImpl) GetByID(ctx context.Context, companyID, id string) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	t, err := scanTeam(q.QueryRow(ctx, teamSelect+` WHERE t.id = $1 AND t.company_id = $2`, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return t, nil
}

// Update implements team.TeamRepository.
func (r *teamRepositoryImpl) Update(ctx context.Context, t team.Team) (team.Team, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE teams SET name = $1, manager_id = $2, updated_at = NOW() WHERE id = $3 AND company_id = $4`,
		t.Name, t.ManagerID, t.ID, t.CompanyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return team.Team{}, team.ErrTeamNameExists
		}
		return team.Team{}, fmt.Errorf("failed to update team %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return team.Team{}, team.ErrTeamNotFound
	}
	return r.GetByID(ctx, t.CompanyID, t.ID)
}

// Delete implements team.TeamRepository. Members keep their accounts and
// lose the team through ON DELETE SET NULL.
func (r *teamRepositoryImpl) Delete(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM teams WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return team.ErrTeamNotFound
	}
	return nil
}

// List implements team.TeamRepository.
func (r *teamRepositoryImpl) List(ctx context.Context, companyID string, managerID *string) ([]team.Team, error) {
	q := GetQuerier(ctx, r.db)

	query := teamSelect + ` WHERE t.company_id = $1`
	args := []interface{}{companyID}
	if managerID != nil {
		query += ` AND t.manager_id = $2`
		args = append(args, *managerID)
	}
	query += ` ORDER BY t.name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]team.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
