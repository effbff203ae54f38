package measurement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metric identifies a performance test type.
type Metric string

const (
	MetricFly10Time    Metric = "FLY10_TIME"
	MetricVerticalJump Metric = "VERTICAL_JUMP"
	MetricAgility505   Metric = "AGILITY_505"
	MetricRSI          Metric = "RSI"
	MetricTTest        Metric = "T_TEST"
)

// Metrics is the closed set of accepted metric types.
var Metrics = map[Metric]struct{}{
	MetricFly10Time:    {},
	MetricVerticalJump: {},
	MetricAgility505:   {},
	MetricRSI:          {},
	MetricTTest:        {},
}

// Units is the closed set of accepted unit labels. RSI is unitless.
var Units = map[string]struct{}{
	"s":  {},
	"in": {},
	"":   {},
}

func ValidMetric(m string) bool {
	_, ok := Metrics[Metric(strings.TrimSpace(m))]
	return ok
}

func ValidUnit(u string) bool {
	_, ok := Units[strings.TrimSpace(u)]
	return ok
}

type Measurement struct {
	tenantID      uuid.UUID
	id            uuid.UUID
	athleteID     uuid.UUID
	date          time.Time
	metric        Metric
	value         decimal.Decimal
	units         string
	flyInDistance int
	age           int
	notes         string
	createdAt     time.Time
}

func New(tenantID, athleteID uuid.UUID, date time.Time, metric Metric, value decimal.Decimal, units string) Measurement {
	return Measurement{
		tenantID:  tenantID,
		athleteID: athleteID,
		date:      date,
		metric:    metric,
		value:     value,
		units:     strings.TrimSpace(units),
	}
}

func Hydrate(
	tenantID, id, athleteID uuid.UUID,
	date time.Time,
	metric Metric,
	value decimal.Decimal,
	units string,
	flyInDistance int,
	age int,
	notes string,
	createdAt time.Time,
) Measurement {
	return Measurement{
		tenantID:      tenantID,
		id:            id,
		athleteID:     athleteID,
		date:          date,
		metric:        metric,
		value:         value,
		units:         strings.TrimSpace(units),
		flyInDistance: flyInDistance,
		age:           age,
		notes:         notes,
		createdAt:     createdAt,
	}
}

func (m Measurement) TenantID() uuid.UUID    { return m.tenantID }
func (m Measurement) ID() uuid.UUID          { return m.id }
func (m Measurement) AthleteID() uuid.UUID   { return m.athleteID }
func (m Measurement) Date() time.Time        { return m.date }
func (m Measurement) Metric() Metric         { return m.metric }
func (m Measurement) Value() decimal.Decimal { return m.value }
func (m Measurement) Units() string          { return m.units }
func (m Measurement) FlyInDistance() int     { return m.flyInDistance }
func (m Measurement) Age() int               { return m.age }
func (m Measurement) Notes() string          { return m.notes }
func (m Measurement) CreatedAt() time.Time   { return m.createdAt }

func (m Measurement) WithDetails(flyInDistance, age int, notes string) Measurement {
	m.flyInDistance = flyInDistance
	m.age = age
	m.notes = strings.TrimSpace(notes)
	return m
}

type Repository interface {
	Create(ctx context.Context, m Measurement) (Measurement, error)
}
