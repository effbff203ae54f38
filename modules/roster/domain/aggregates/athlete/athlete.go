package athlete

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale         Gender = "Male"
	GenderFemale       Gender = "Female"
	GenderNotSpecified Gender = "Not Specified"
)

// TeamMembership is an athlete's link to a team, kept as a value inside the
// aggregate. The matcher scores against the best membership when a team hint
// is supplied.
type TeamMembership struct {
	TeamID uuid.UUID
	Name   string
}

type Athlete struct {
	tenantID         uuid.UUID
	id               uuid.UUID
	firstName        string
	lastName         string
	birthDate        time.Time
	birthYear        int
	graduationYear   int
	gender           Gender
	emails           []string
	phoneNumbers     []string
	sports           []string
	heightInches     int
	weightPounds     int
	school           string
	competitiveLevel int
	teams            []TeamMembership
	createdAt        time.Time
	updatedAt        time.Time
}

func New(tenantID uuid.UUID, firstName, lastName string) Athlete {
	return Athlete{
		tenantID:  tenantID,
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		gender:    GenderNotSpecified,
	}
}

func Hydrate(
	tenantID uuid.UUID,
	id uuid.UUID,
	firstName string,
	lastName string,
	birthDate time.Time,
	birthYear int,
	graduationYear int,
	gender Gender,
	emails []string,
	phoneNumbers []string,
	sports []string,
	heightInches int,
	weightPounds int,
	school string,
	competitiveLevel int,
	teams []TeamMembership,
	createdAt time.Time,
	updatedAt time.Time,
) Athlete {
	return Athlete{
		tenantID:         tenantID,
		id:               id,
		firstName:        strings.TrimSpace(firstName),
		lastName:         strings.TrimSpace(lastName),
		birthDate:        birthDate,
		birthYear:        birthYear,
		graduationYear:   graduationYear,
		gender:           gender,
		emails:           emails,
		phoneNumbers:     phoneNumbers,
		sports:           sports,
		heightInches:     heightInches,
		weightPounds:     weightPounds,
		school:           school,
		competitiveLevel: competitiveLevel,
		teams:            teams,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (a Athlete) TenantID() uuid.UUID      { return a.tenantID }
func (a Athlete) ID() uuid.UUID            { return a.id }
func (a Athlete) FirstName() string        { return a.firstName }
func (a Athlete) LastName() string         { return a.lastName }
func (a Athlete) BirthDate() time.Time     { return a.birthDate }
func (a Athlete) BirthYear() int           { return a.birthYear }
func (a Athlete) GraduationYear() int      { return a.graduationYear }
func (a Athlete) Gender() Gender           { return a.gender }
func (a Athlete) Emails() []string         { return a.emails }
func (a Athlete) PhoneNumbers() []string   { return a.phoneNumbers }
func (a Athlete) Sports() []string         { return a.sports }
func (a Athlete) HeightInches() int        { return a.heightInches }
func (a Athlete) WeightPounds() int        { return a.weightPounds }
func (a Athlete) School() string           { return a.school }
func (a Athlete) CompetitiveLevel() int    { return a.competitiveLevel }
func (a Athlete) Teams() []TeamMembership  { return a.teams }
func (a Athlete) CreatedAt() time.Time     { return a.createdAt }
func (a Athlete) UpdatedAt() time.Time     { return a.updatedAt }
func (a Athlete) IsZero() bool             { return a.id == uuid.Nil && a.firstName == "" && a.lastName == "" }

func (a Athlete) WithProfile(birthDate time.Time, birthYear, graduationYear int, gender Gender) Athlete {
	a.birthDate = birthDate
	a.birthYear = birthYear
	a.graduationYear = graduationYear
	if gender != "" {
		a.gender = gender
	}
	return a
}

func (a Athlete) WithContacts(emails, phoneNumbers []string) Athlete {
	a.emails = mergeUnique(a.emails, emails)
	a.phoneNumbers = mergeUnique(a.phoneNumbers, phoneNumbers)
	return a
}

func (a Athlete) WithPhysicals(heightInches, weightPounds int) Athlete {
	if heightInches > 0 {
		a.heightInches = heightInches
	}
	if weightPounds > 0 {
		a.weightPounds = weightPounds
	}
	return a
}

func (a Athlete) WithSchool(school string) Athlete {
	if s := strings.TrimSpace(school); s != "" {
		a.school = s
	}
	return a
}

func (a Athlete) WithCompetitiveLevel(level int) Athlete {
	if level >= 1 && level <= 5 {
		a.competitiveLevel = level
	}
	return a
}

func (a Athlete) WithSports(sports []string) Athlete {
	a.sports = mergeUnique(a.sports, sports)
	return a
}

func (a Athlete) WithTeam(m TeamMembership) Athlete {
	for _, t := range a.teams {
		if t.TeamID == m.TeamID {
			return a
		}
	}
	a.teams = append(append([]TeamMembership(nil), a.teams...), m)
	return a
}

func mergeUnique(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, lst := range [][]string{existing, incoming} {
		for _, v := range lst {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
