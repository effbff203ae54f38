package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence/models"
)

const athleteColumns = `
	id, tenant_id, first_name, last_name, birth_date, birth_year, graduation_year,
	gender, emails, phone_numbers, sports, height_inches, weight_pounds, school,
	competitive_level, created_at, updated_at
`

type AthleteRepository struct {
	pool *pgxpool.Pool
}

func NewAthleteRepository(pool *pgxpool.Pool) athlete.Repository {
	return &AthleteRepository{pool: pool}
}

func (r *AthleteRepository) ListCandidates(ctx context.Context, tenantID uuid.UUID) ([]athlete.Athlete, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+athleteColumns+`
		FROM roster_athletes
		WHERE tenant_id = $1
		ORDER BY last_name, first_name, id
	`, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "query athletes")
	}
	defer rows.Close()

	dbRows, err := scanAthletes(rows)
	if err != nil {
		return nil, err
	}

	memberships, err := r.memberships(ctx, tenantID, nil)
	if err != nil {
		return nil, err
	}
	return assembleAthletes(dbRows, memberships), nil
}

func (r *AthleteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (athlete.Athlete, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+athleteColumns+`
		FROM roster_athletes
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	var m models.Athlete
	if err := scanAthlete(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return athlete.Athlete{}, athlete.ErrNotFound
		}
		return athlete.Athlete{}, errors.Wrap(err, "get athlete")
	}

	memberships, err := r.memberships(ctx, tenantID, []uuid.UUID{id})
	if err != nil {
		return athlete.Athlete{}, err
	}
	return toDomainAthlete(&m, memberships[m.ID]), nil
}

func (r *AthleteRepository) GetPaginated(ctx context.Context, tenantID uuid.UUID, params *athlete.FindParams) ([]athlete.Athlete, int64, error) {
	where := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	if params != nil && strings.TrimSpace(params.Q) != "" {
		where = append(where, "(first_name ILIKE $2 OR last_name ILIKE $2)")
		args = append(args, "%"+strings.TrimSpace(params.Q)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM roster_athletes WHERE "+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count athletes")
	}

	query := `
		SELECT ` + athleteColumns + `
		FROM roster_athletes
		WHERE ` + cond + `
		ORDER BY last_name, first_name, id
	`
	if params != nil {
		query += formatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "query athletes")
	}
	defer rows.Close()

	dbRows, err := scanAthletes(rows)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(dbRows))
	for i, m := range dbRows {
		ids[i] = parseID(m.ID)
	}
	memberships, err := r.memberships(ctx, tenantID, ids)
	if err != nil {
		return nil, 0, err
	}
	return assembleAthletes(dbRows, memberships), total, nil
}

func (r *AthleteRepository) Create(ctx context.Context, a athlete.Athlete) (athlete.Athlete, error) {
	m := toDBAthlete(a)
	id := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return athlete.Athlete{}, errors.Wrap(err, "begin create athlete")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO roster_athletes (
			id, tenant_id, first_name, last_name, birth_date, birth_year,
			graduation_year, gender, emails, phone_numbers, sports,
			height_inches, weight_pounds, school, competitive_level,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now()
		)
	`,
		id, m.TenantID, m.FirstName, m.LastName, m.BirthDate, m.BirthYear,
		m.GraduationYear, m.Gender, m.Emails, m.PhoneNumbers, m.Sports,
		m.HeightInches, m.WeightPounds, m.School, m.CompetitiveLevel,
	); err != nil {
		return athlete.Athlete{}, errors.Wrap(err, "insert athlete")
	}

	if err := replaceMemberships(ctx, tx, id, a.Teams()); err != nil {
		return athlete.Athlete{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return athlete.Athlete{}, errors.Wrap(err, "commit create athlete")
	}
	return r.GetByID(ctx, a.TenantID(), id)
}

func (r *AthleteRepository) Update(ctx context.Context, a athlete.Athlete) error {
	m := toDBAthlete(a)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin update athlete")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE roster_athletes SET
			first_name = $3, last_name = $4, birth_date = $5, birth_year = $6,
			graduation_year = $7, gender = $8, emails = $9, phone_numbers = $10,
			sports = $11, height_inches = $12, weight_pounds = $13, school = $14,
			competitive_level = $15, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`,
		m.TenantID, m.ID, m.FirstName, m.LastName, m.BirthDate, m.BirthYear,
		m.GraduationYear, m.Gender, m.Emails, m.PhoneNumbers, m.Sports,
		m.HeightInches, m.WeightPounds, m.School, m.CompetitiveLevel,
	)
	if err != nil {
		return errors.Wrap(err, "update athlete")
	}
	if tag.RowsAffected() == 0 {
		return athlete.ErrNotFound
	}

	if err := replaceMemberships(ctx, tx, a.ID(), a.Teams()); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit update athlete")
}

// memberships loads team links for the tenant, keyed by athlete id. A nil ids
// slice loads the whole tenant.
func (r *AthleteRepository) memberships(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[string][]models.TeamMembership, error) {
	query := `
		SELECT tm.athlete_id, tm.team_id, t.name
		FROM roster_team_members tm
		JOIN roster_teams t ON t.id = tm.team_id
		WHERE t.tenant_id = $1
	`
	args := []interface{}{tenantID}
	if ids != nil {
		query += " AND tm.athlete_id = ANY($2)"
		args = append(args, ids)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query team memberships")
	}
	defer rows.Close()

	out := make(map[string][]models.TeamMembership)
	for rows.Next() {
		var m models.TeamMembership
		if err := rows.Scan(&m.AthleteID, &m.TeamID, &m.TeamName); err != nil {
			return nil, errors.Wrap(err, "scan team membership")
		}
		out[m.AthleteID] = append(out[m.AthleteID], m)
	}
	return out, errors.Wrap(rows.Err(), "iterate team memberships")
}

func replaceMemberships(ctx context.Context, tx pgx.Tx, athleteID uuid.UUID, teams []athlete.TeamMembership) error {
	if _, err := tx.Exec(ctx,
		"DELETE FROM roster_team_members WHERE athlete_id = $1", athleteID,
	); err != nil {
		return errors.Wrap(err, "clear team memberships")
	}
	for _, t := range teams {
		if _, err := tx.Exec(ctx, `
			INSERT INTO roster_team_members (athlete_id, team_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, athleteID, t.TeamID); err != nil {
			return errors.Wrap(err, "insert team membership")
		}
	}
	return nil
}

func formatLimitOffset(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf(" OFFSET %d", offset)
	}
	return ""
}

func scanAthlete(row pgx.Row, m *models.Athlete) error {
	return row.Scan(
		&m.ID,
		&m.TenantID,
		&m.FirstName,
		&m.LastName,
		&m.BirthDate,
		&m.BirthYear,
		&m.GraduationYear,
		&m.Gender,
		&m.Emails,
		&m.PhoneNumbers,
		&m.Sports,
		&m.HeightInches,
		&m.WeightPounds,
		&m.School,
		&m.CompetitiveLevel,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func scanAthletes(rows pgx.Rows) ([]models.Athlete, error) {
	var out []models.Athlete
	for rows.Next() {
		var m models.Athlete
		if err := scanAthlete(rows, &m); err != nil {
			return nil, errors.Wrap(err, "scan athlete")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "iterate athletes")
}

func assembleAthletes(dbRows []models.Athlete, memberships map[string][]models.TeamMembership) []athlete.Athlete {
	out := make([]athlete.Athlete, len(dbRows))
	for i := range dbRows {
		out[i] = toDomainAthlete(&dbRows[i], memberships[dbRows[i].ID])
	}
	return out
}
