package athlete

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("athlete not found")

type FindParams struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	// ListCandidates returns a point-in-time snapshot of all athletes for the
	// tenant, used as match candidates during import reconciliation.
	ListCandidates(ctx context.Context, tenantID uuid.UUID) ([]Athlete, error)
	GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (Athlete, error)
	GetPaginated(ctx context.Context, tenantID uuid.UUID, params *FindParams) ([]Athlete, int64, error)
	Create(ctx context.Context, a Athlete) (Athlete, error)
	Update(ctx context.Context, a Athlete) error
}
