package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/team"
	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence/models"
)

type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) team.Repository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) List(ctx context.Context, tenantID uuid.UUID) ([]team.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, sport, created_at
		FROM roster_teams
		WHERE tenant_id = $1
		ORDER BY name, id
	`, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "query teams")
	}
	defer rows.Close()

	var out []team.Team
	for rows.Next() {
		var m models.Team
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Sport, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan team")
		}
		out = append(out, toDomainTeam(&m))
	}
	return out, errors.Wrap(rows.Err(), "iterate teams")
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) (team.Team, error) {
	var m models.Team
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roster_teams (id, tenant_id, name, sport, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tenant_id, lower(name)) DO UPDATE SET name = roster_teams.name
		RETURNING id, tenant_id, name, sport, created_at
	`, uuid.New(), t.TenantID(), t.Name(), t.Sport()).
		Scan(&m.ID, &m.TenantID, &m.Name, &m.Sport, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, errors.Wrap(err, "insert team")
	}
	return toDomainTeam(&m), nil
}
