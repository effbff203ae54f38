package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/measurement"
	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence/models"
)

type MeasurementRepository struct {
	pool *pgxpool.Pool
}

func NewMeasurementRepository(pool *pgxpool.Pool) measurement.Repository {
	return &MeasurementRepository{pool: pool}
}

func (r *MeasurementRepository) Create(ctx context.Context, m measurement.Measurement) (measurement.Measurement, error) {
	var row models.Measurement
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roster_measurements (
			id, tenant_id, athlete_id, date, metric, value, units,
			fly_in_distance, age, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		RETURNING id, tenant_id, athlete_id, date, metric, value::text, units,
			fly_in_distance, age, notes, created_at
	`,
		uuid.New(), m.TenantID(), m.AthleteID(), m.Date(), string(m.Metric()),
		m.Value().String(), m.Units(), m.FlyInDistance(), m.Age(), m.Notes(),
	).Scan(
		&row.ID,
		&row.TenantID,
		&row.AthleteID,
		&row.Date,
		&row.Metric,
		&row.Value,
		&row.Units,
		&row.FlyInDistance,
		&row.Age,
		&row.Notes,
		&row.CreatedAt,
	)
	if err != nil {
		return measurement.Measurement{}, errors.Wrap(err, "insert measurement")
	}
	created, err := toDomainMeasurement(&row)
	return created, errors.Wrap(err, "map measurement")
}
