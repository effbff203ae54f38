package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
)

// AthleteService is the CRUD surface for athletes outside of bulk imports.
type AthleteService struct {
	athletes athlete.Repository
}

func NewAthleteService(athletes athlete.Repository) *AthleteService {
	return &AthleteService{athletes: athletes}
}

func (s *AthleteService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (athlete.Athlete, error) {
	return s.athletes.GetByID(ctx, tenantID, id)
}

func (s *AthleteService) GetPaginated(ctx context.Context, tenantID uuid.UUID, params *athlete.FindParams) ([]athlete.Athlete, int64, error) {
	return s.athletes.GetPaginated(ctx, tenantID, params)
}

// Create validates the DTO and persists a new athlete.
func (s *AthleteService) Create(ctx context.Context, tenantID uuid.UUID, dto *athlete.CreateDTO) (athlete.Athlete, error) {
	if fields, ok := dto.Ok(); !ok {
		msgs := make([]string, 0, len(fields))
		for f, m := range fields {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f, m))
		}
		sort.Strings(msgs)
		return athlete.Athlete{}, fmt.Errorf("invalid athlete: %s", strings.Join(msgs, "; "))
	}

	entity := athlete.New(tenantID, dto.FirstName, dto.LastName).
		WithProfile(time.Time{}, dto.BirthYear, dto.GraduationYear, athlete.Gender(dto.Gender)).
		WithPhysicals(dto.HeightInches, dto.WeightPounds).
		WithSchool(dto.School).
		WithCompetitiveLevel(dto.CompetitiveLevel)
	return s.athletes.Create(ctx, entity)
}
