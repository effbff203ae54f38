package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("team not found")

type Team struct {
	tenantID  uuid.UUID
	id        uuid.UUID
	name      string
	sport     string
	createdAt time.Time
}

func New(tenantID uuid.UUID, name, sport string) Team {
	return Team{
		tenantID: tenantID,
		name:     strings.TrimSpace(name),
		sport:    strings.TrimSpace(sport),
	}
}

func Hydrate(tenantID, id uuid.UUID, name, sport string, createdAt time.Time) Team {
	return Team{
		tenantID:  tenantID,
		id:        id,
		name:      strings.TrimSpace(name),
		sport:     strings.TrimSpace(sport),
		createdAt: createdAt,
	}
}

func (t Team) TenantID() uuid.UUID  { return t.tenantID }
func (t Team) ID() uuid.UUID        { return t.id }
func (t Team) Name() string         { return t.name }
func (t Team) Sport() string        { return t.sport }
func (t Team) CreatedAt() time.Time { return t.createdAt }
func (t Team) IsZero() bool         { return t.id == uuid.Nil && t.name == "" }

type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]Team, error)
	Create(ctx context.Context, t Team) (Team, error)
}
