// Package importer implements the bulk import reconciliation pipeline: row
// normalization and validation, contact smart placement, fuzzy identity
// matching, and cross-batch result aggregation.
package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/measurement"
)

// Kind tags the record shape a file carries.
type Kind string

const (
	KindAthlete     Kind = "athlete"
	KindMeasurement Kind = "measurement"
)

// AthleteHeaders is the exact, order-sensitive header contract for athlete
// files. Exports use the same set so exported files re-import cleanly.
var AthleteHeaders = []string{
	"firstName", "lastName", "birthDate", "birthYear", "graduationYear", "gender",
	"emails", "phoneNumbers", "sports", "height", "weight", "school", "teamName",
}

// MeasurementHeaders is the header contract for measurement files.
var MeasurementHeaders = []string{
	"firstName", "lastName", "gender", "teamName", "date", "age",
	"metric", "value", "units", "flyInDistance", "notes",
}

const (
	minHeightInches = 36
	maxHeightInches = 84
	minWeightPounds = 50
	maxWeightPounds = 400
	minBirthYear    = 1900
	minGradYear     = 1950
	maxGradYear     = 2100
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// FieldError is a per-field validation failure. Errors for one row are
// collected together rather than short-circuiting on the first failure.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AthleteRow is a validated, typed athlete import row.
type AthleteRow struct {
	Line             int
	FirstName        string
	LastName         string
	BirthDate        time.Time
	BirthYear        int
	GraduationYear   int
	Gender           athlete.Gender
	Emails           []string
	PhoneNumbers     []string
	Sports           []string
	HeightInches     int
	WeightPounds     int
	School           string
	TeamName         string
	CompetitiveLevel int
}

// Criteria returns the identity-matching subset of the row.
func (r AthleteRow) Criteria() MatchingCriteria {
	return MatchingCriteria{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		TeamName:  r.TeamName,
	}
}

// MeasurementRow is a validated, typed measurement import row.
type MeasurementRow struct {
	Line          int
	FirstName     string
	LastName      string
	Gender        athlete.Gender
	TeamName      string
	Date          time.Time
	Age           int
	Metric        measurement.Metric
	Value         decimal.Decimal
	Units         string
	FlyInDistance int
	Notes         string
}

func (r MeasurementRow) Criteria() MatchingCriteria {
	return MatchingCriteria{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		TeamName:  r.TeamName,
	}
}

// ParseAthleteRow validates one raw column mapping into a typed athlete row.
// It returns either a valid row or a non-empty error list, never both.
// Contact columns are handled separately by ResolveContacts.
func ParseAthleteRow(line int, values map[string]string, now time.Time) (AthleteRow, []FieldError) {
	var errs []FieldError
	row := AthleteRow{Line: line}

	row.FirstName = requiredString(values, "firstName", &errs)
	row.LastName = requiredString(values, "lastName", &errs)

	row.BirthDate = optionalDate(values, "birthDate", now, &errs)
	row.BirthYear = optionalInt(values, "birthYear", minBirthYear, now.Year(), &errs)
	row.GraduationYear = optionalInt(values, "graduationYear", minGradYear, maxGradYear, &errs)
	row.Gender = optionalGender(values, "gender", &errs)
	row.HeightInches = optionalInt(values, "height", minHeightInches, maxHeightInches, &errs)
	row.WeightPounds = optionalInt(values, "weight", minWeightPounds, maxWeightPounds, &errs)
	row.CompetitiveLevel = optionalInt(values, "competitiveLevel", 1, 5, &errs)
	row.School = strings.TrimSpace(values["school"])
	row.TeamName = strings.TrimSpace(values["teamName"])
	row.Sports = splitList(values["sports"])

	if len(errs) > 0 {
		return AthleteRow{}, errs
	}
	return row, nil
}

// ParseMeasurementRow validates one raw column mapping into a typed
// measurement row.
func ParseMeasurementRow(line int, values map[string]string, now time.Time) (MeasurementRow, []FieldError) {
	var errs []FieldError
	row := MeasurementRow{Line: line}

	row.FirstName = requiredString(values, "firstName", &errs)
	row.LastName = requiredString(values, "lastName", &errs)
	row.Gender = optionalGender(values, "gender", &errs)
	row.TeamName = strings.TrimSpace(values["teamName"])
	row.Notes = strings.TrimSpace(values["notes"])
	row.Age = optionalInt(values, "age", 0, 100, &errs)
	row.FlyInDistance = optionalInt(values, "flyInDistance", 0, 1000, &errs)

	if v := strings.TrimSpace(values["date"]); v == "" {
		errs = append(errs, FieldError{Field: "date", Message: "is required"})
	} else {
		row.Date = parseDate("date", v, now, &errs)
	}

	metricValue := strings.TrimSpace(values["metric"])
	if !measurement.ValidMetric(metricValue) {
		errs = append(errs, FieldError{Field: "metric", Message: fmt.Sprintf("unknown metric %q", metricValue)})
	} else {
		row.Metric = measurement.Metric(metricValue)
	}

	unitsValue := strings.TrimSpace(values["units"])
	if !measurement.ValidUnit(unitsValue) {
		errs = append(errs, FieldError{Field: "units", Message: fmt.Sprintf("unknown unit %q", unitsValue)})
	} else {
		row.Units = unitsValue
	}

	if v := strings.TrimSpace(values["value"]); v == "" {
		errs = append(errs, FieldError{Field: "value", Message: "is required"})
	} else if d, err := decimal.NewFromString(v); err != nil {
		errs = append(errs, FieldError{Field: "value", Message: fmt.Sprintf("invalid number %q", v)})
	} else if !d.IsPositive() {
		errs = append(errs, FieldError{Field: "value", Message: "must be strictly positive"})
	} else {
		row.Value = d
	}

	if len(errs) > 0 {
		return MeasurementRow{}, errs
	}
	return row, nil
}

func requiredString(values map[string]string, field string, errs *[]FieldError) string {
	v := strings.TrimSpace(values[field])
	if v == "" {
		*errs = append(*errs, FieldError{Field: field, Message: "is required"})
	}
	return v
}

func optionalInt(values map[string]string, field string, min, max int, errs *[]FieldError) int {
	v := strings.TrimSpace(values[field])
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("invalid number %q", v)})
		return 0
	}
	if n < min || n > max {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("%d out of range [%d, %d]", n, min, max)})
		return 0
	}
	return n
}

func optionalDate(values map[string]string, field string, now time.Time, errs *[]FieldError) time.Time {
	v := strings.TrimSpace(values[field])
	if v == "" {
		return time.Time{}
	}
	return parseDate(field, v, now, errs)
}

func parseDate(field, v string, now time.Time, errs *[]FieldError) time.Time {
	if !dateRe.MatchString(v) {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", v)})
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("invalid date %q", v)})
		return time.Time{}
	}
	if t.After(now) {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("date %q lies in the future", v)})
		return time.Time{}
	}
	return t
}

func optionalGender(values map[string]string, field string, errs *[]FieldError) athlete.Gender {
	v := strings.TrimSpace(values[field])
	switch v {
	case "":
		return ""
	case string(athlete.GenderMale), string(athlete.GenderFemale), string(athlete.GenderNotSpecified):
		return athlete.Gender(v)
	default:
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("unknown gender %q", v)})
		return ""
	}
}

func splitList(v string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == ',' }) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
