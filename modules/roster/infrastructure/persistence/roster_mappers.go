package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/measurement"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/team"
	"github.com/rosterhq/roster-sdk/modules/roster/infrastructure/persistence/models"
)

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toDomainAthlete(row *models.Athlete, memberships []models.TeamMembership) athlete.Athlete {
	var birthDate time.Time
	if row.BirthDate != nil {
		birthDate = *row.BirthDate
	}
	teams := make([]athlete.TeamMembership, 0, len(memberships))
	for _, m := range memberships {
		teams = append(teams, athlete.TeamMembership{
			TeamID: parseID(m.TeamID),
			Name:   m.TeamName,
		})
	}
	return athlete.Hydrate(
		parseID(row.TenantID),
		parseID(row.ID),
		row.FirstName,
		row.LastName,
		birthDate,
		row.BirthYear,
		row.GraduationYear,
		athlete.Gender(row.Gender),
		row.Emails,
		row.PhoneNumbers,
		row.Sports,
		row.HeightInches,
		row.WeightPounds,
		row.School,
		row.CompetitiveLevel,
		teams,
		row.CreatedAt,
		row.UpdatedAt,
	)
}

func toDBAthlete(a athlete.Athlete) *models.Athlete {
	var birthDate *time.Time
	if !a.BirthDate().IsZero() {
		d := a.BirthDate()
		birthDate = &d
	}
	return &models.Athlete{
		ID:               a.ID().String(),
		TenantID:         a.TenantID().String(),
		FirstName:        a.FirstName(),
		LastName:         a.LastName(),
		BirthDate:        birthDate,
		BirthYear:        a.BirthYear(),
		GraduationYear:   a.GraduationYear(),
		Gender:           string(a.Gender()),
		Emails:           a.Emails(),
		PhoneNumbers:     a.PhoneNumbers(),
		Sports:           a.Sports(),
		HeightInches:     a.HeightInches(),
		WeightPounds:     a.WeightPounds(),
		School:           a.School(),
		CompetitiveLevel: a.CompetitiveLevel(),
		CreatedAt:        a.CreatedAt(),
		UpdatedAt:        a.UpdatedAt(),
	}
}

func toDomainTeam(row *models.Team) team.Team {
	return team.Hydrate(
		parseID(row.TenantID),
		parseID(row.ID),
		row.Name,
		row.Sport,
		row.CreatedAt,
	)
}

func toDomainMeasurement(row *models.Measurement) (measurement.Measurement, error) {
	value, err := decimal.NewFromString(row.Value)
	if err != nil {
		return measurement.Measurement{}, err
	}
	return measurement.Hydrate(
		parseID(row.TenantID),
		parseID(row.ID),
		parseID(row.AthleteID),
		row.Date,
		measurement.Metric(row.Metric),
		value,
		row.Units,
		row.FlyInDistance,
		row.Age,
		row.Notes,
		row.CreatedAt,
	), nil
}
