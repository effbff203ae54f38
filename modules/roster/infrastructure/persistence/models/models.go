package models

import "time"

type Athlete struct {
	ID               string
	TenantID         string
	FirstName        string
	LastName         string
	BirthDate        *time.Time
	BirthYear        int
	GraduationYear   int
	Gender           string
	Emails           []string
	PhoneNumbers     []string
	Sports           []string
	HeightInches     int
	WeightPounds     int
	School           string
	CompetitiveLevel int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Team struct {
	ID        string
	TenantID  string
	Name      string
	Sport     string
	CreatedAt time.Time
}

type TeamMembership struct {
	AthleteID string
	TeamID    string
	TeamName  string
}

type Measurement struct {
	ID            string
	TenantID      string
	AthleteID     string
	Date          time.Time
	Metric        string
	Value         string
	Units         string
	FlyInDistance int
	Age           int
	Notes         string
	CreatedAt     time.Time
}
