package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/measurement"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/team"
	"github.com/rosterhq/roster-sdk/modules/roster/importer"
	"github.com/rosterhq/roster-sdk/modules/roster/services"
	"github.com/rosterhq/roster-sdk/pkg/eventbus"
)

var testTenantID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

type memAthleteRepo struct {
	mu       sync.Mutex
	athletes []athlete.Athlete
	listErr  error
}

func (r *memAthleteRepo) ListCandidates(_ context.Context, tenantID uuid.UUID) ([]athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]athlete.Athlete, 0, len(r.athletes))
	for _, a := range r.athletes {
		if a.TenantID() == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAthleteRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.athletes {
		if a.TenantID() == tenantID && a.ID() == id {
			return a, nil
		}
	}
	return athlete.Athlete{}, athlete.ErrNotFound
}

func (r *memAthleteRepo) GetPaginated(_ context.Context, tenantID uuid.UUID, _ *athlete.FindParams) ([]athlete.Athlete, int64, error) {
	out, err := r.ListCandidates(context.Background(), tenantID)
	return out, int64(len(out)), err
}

func (r *memAthleteRepo) Create(_ context.Context, a athlete.Athlete) (athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := athlete.Hydrate(
		a.TenantID(), uuid.New(), a.FirstName(), a.LastName(),
		a.BirthDate(), a.BirthYear(), a.GraduationYear(), a.Gender(),
		a.Emails(), a.PhoneNumbers(), a.Sports(),
		a.HeightInches(), a.WeightPounds(), a.School(), a.CompetitiveLevel(),
		a.Teams(), time.Now(), time.Now(),
	)
	r.athletes = append(r.athletes, created)
	return created, nil
}

func (r *memAthleteRepo) Update(_ context.Context, a athlete.Athlete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.athletes {
		if existing.ID() == a.ID() {
			r.athletes[i] = a
			return nil
		}
	}
	return athlete.ErrNotFound
}

type memTeamRepo struct {
	mu    sync.Mutex
	teams []team.Team
}

func (r *memTeamRepo) List(_ context.Context, tenantID uuid.UUID) ([]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		if t.TenantID() == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTeamRepo) Create(_ context.Context, t team.Team) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := team.Hydrate(t.TenantID(), uuid.New(), t.Name(), t.Sport(), time.Now())
	r.teams = append(r.teams, created)
	return created, nil
}

type memMeasurementRepo struct {
	mu           sync.Mutex
	measurements []measurement.Measurement
}

func (r *memMeasurementRepo) Create(_ context.Context, m measurement.Measurement) (measurement.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := measurement.Hydrate(
		m.TenantID(), uuid.New(), m.AthleteID(),
		m.Date(), m.Metric(), m.Value(), m.Units(),
		m.FlyInDistance(), m.Age(), m.Notes(), time.Now(),
	)
	r.measurements = append(r.measurements, created)
	return created, nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(logrus.StandardLogger().Out)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newService(athletes *memAthleteRepo, teams *memTeamRepo, measurements *memMeasurementRepo) *services.ImportService {
	return services.NewImportService(athletes, teams, measurements, testLogger())
}

func seededAthlete(first, last, teamName string) athlete.Athlete {
	var teams []athlete.TeamMembership
	if teamName != "" {
		teams = []athlete.TeamMembership{{TeamID: uuid.New(), Name: teamName}}
	}
	return athlete.Hydrate(
		testTenantID, uuid.New(), first, last,
		time.Time{}, 0, 0, athlete.GenderNotSpecified,
		nil, nil, nil, 0, 0, "", 0,
		teams, time.Now(), time.Now(),
	)
}

func TestImportService_CreatesNewAthletes(t *testing.T) {
	athletes := &memAthleteRepo{}
	teams := &memTeamRepo{}
	svc := newService(athletes, teams, &memMeasurementRepo{})

	text := strings.Join([]string{
		"firstName,lastName,birthYear,gender,emails,teamName",
		"Alice,Nguyen,2008,Female,alice@example.com,Thunder FC",
		"Bruno,Silva,2007,Male,bruno@example.com,Thunder FC",
	}, "\n")

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{
		Kind: importer.KindAthlete,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.Summary.Created)
	assert.Empty(t, result.Errors)
	require.Len(t, athletes.athletes, 2)
	assert.Len(t, result.CreatedAthletes, 2)

	// Both rows name the same team; only one team record is created.
	require.Len(t, teams.teams, 1)
	assert.Equal(t, "Thunder FC", teams.teams[0].Name())
	assert.Len(t, result.CreatedTeams, 1)

	require.Len(t, athletes.athletes[0].Teams(), 1)
	assert.Equal(t, teams.teams[0].ID(), athletes.athletes[0].Teams()[0].TeamID)
}

func TestImportService_UpdatesExactMatch(t *testing.T) {
	existing := seededAthlete("Alice", "Nguyen", "Thunder FC")
	athletes := &memAthleteRepo{athletes: []athlete.Athlete{existing}}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	text := "firstName,lastName,teamName,emails,school\nAlice,Nguyen,Thunder FC,alice@new.example.com,Central High\n"

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Updated)
	assert.Equal(t, 0, result.Summary.Created)
	require.Len(t, athletes.athletes, 1)
	updated := athletes.athletes[0]
	assert.Equal(t, existing.ID(), updated.ID())
	assert.Contains(t, updated.Emails(), "alice@new.example.com")
	assert.Equal(t, "Central High", updated.School())

	require.Len(t, result.RowResults, 1)
	assert.Equal(t, importer.ActionUpdated, result.RowResults[0].Action)
	assert.Equal(t, importer.TierExact, result.RowResults[0].Tier)
	assert.Equal(t, existing.ID(), result.RowResults[0].EntityID)
}

func TestImportService_DryRunWritesNothing(t *testing.T) {
	existing := seededAthlete("Alice", "Nguyen", "Thunder FC")
	athletes := &memAthleteRepo{athletes: []athlete.Athlete{existing}}
	teams := &memTeamRepo{}
	svc := newService(athletes, teams, &memMeasurementRepo{})

	text := strings.Join([]string{
		"firstName,lastName,teamName",
		"Alice,Nguyen,Thunder FC",
		"Brand,New,Thunder FC",
	}, "\n")

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Matched)
	assert.Equal(t, 1, result.Summary.Created)
	require.Len(t, athletes.athletes, 1)
	assert.Equal(t, existing.Emails(), athletes.athletes[0].Emails())
	assert.Empty(t, teams.teams)
}

func TestImportService_InvalidRowsSkippedWithLineErrors(t *testing.T) {
	athletes := &memAthleteRepo{}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	text := strings.Join([]string{
		"firstName,lastName,birthYear,height",
		"Alice,Nguyen,2008,60",
		",Smith,1850,20",
		"Carla,Iwu,2006,70",
	}, "\n")

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Created)
	assert.Equal(t, 1, result.Summary.Skipped)
	require.Len(t, athletes.athletes, 2)

	// Line 3 carries all three field failures.
	require.Len(t, result.Errors, 3)
	for _, e := range result.Errors {
		assert.Equal(t, 3, e.Line)
	}
}

func TestImportService_AmbiguousMatchRequiresReview(t *testing.T) {
	athletes := &memAthleteRepo{athletes: []athlete.Athlete{
		seededAthlete("Jon", "Smith", ""),
		seededAthlete("John", "Smith", ""),
	}}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	text := "firstName,lastName\nJon,Smith\n"

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{})
	require.NoError(t, err)

	// Both candidates score high; the row is held for manual review, never
	// silently merged or duplicated.
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 0, result.Summary.Created)
	assert.Equal(t, 0, result.Summary.Updated)
	require.Len(t, athletes.athletes, 2)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "manual review")
}

func TestImportService_SnapshotFailureIsolatedToBatch(t *testing.T) {
	athletes := &memAthleteRepo{listErr: errors.New("connection reset")}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	text := "firstName,lastName\nAlice,Nguyen\nBruno,Silva\n"

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Message, "candidate lookup failed")
	// Errors picked up during aggregation carry their batch tag.
	assert.Equal(t, 1, result.Errors[0].Batch)
}

func TestImportService_MissingHeaderFailsRun(t *testing.T) {
	svc := newService(&memAthleteRepo{}, &memTeamRepo{}, &memMeasurementRepo{})

	_, err := svc.Run(context.Background(), testTenantID, "", services.ImportOptions{})
	require.Error(t, err)
}

func TestImportService_ContactSmartPlacementWarns(t *testing.T) {
	athletes := &memAthleteRepo{}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	text := "firstName,lastName,emails,phoneNumbers\nAlice,Nguyen,512-555-1234,alice@example.com\n"

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Created)
	require.Len(t, athletes.athletes, 1)
	assert.Equal(t, []string{"alice@example.com"}, athletes.athletes[0].Emails())
	assert.Equal(t, []string{"512-555-1234"}, athletes.athletes[0].PhoneNumbers())
	assert.Len(t, result.Warnings, 2)
}

func TestImportService_MultipleBatches(t *testing.T) {
	athletes := &memAthleteRepo{}
	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{})

	var b strings.Builder
	b.WriteString("firstName,lastName\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "Ath%02d,Row%02d\n", i, i)
	}

	result, err := svc.Run(context.Background(), testTenantID, b.String(), services.ImportOptions{
		MaxBatchSize: 10,
		Workers:      3,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, result.TotalRows)
	assert.Equal(t, 25, result.Summary.Created)
	assert.Len(t, athletes.athletes, 25)
	// Row outcomes come back in batch order regardless of worker completion.
	require.Len(t, result.RowResults, 25)
	assert.Equal(t, 2, result.RowResults[0].Line)
	assert.Equal(t, 26, result.RowResults[24].Line)
}

func TestImportService_MeasurementsAttachToMatchedAthlete(t *testing.T) {
	existing := seededAthlete("Alice", "Nguyen", "Thunder FC")
	athletes := &memAthleteRepo{athletes: []athlete.Athlete{existing}}
	measurements := &memMeasurementRepo{}
	svc := newService(athletes, &memTeamRepo{}, measurements)

	text := strings.Join([]string{
		"firstName,lastName,teamName,date,metric,value,units",
		"Alice,Nguyen,Thunder FC,2026-05-01,FLY10_TIME,1.42,s",
		"Nobody,Known,,2026-05-01,VERTICAL_JUMP,24.5,in",
	}, "\n")

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{
		Kind: importer.KindMeasurement,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Created)
	assert.Equal(t, 1, result.Summary.Skipped)
	require.Len(t, measurements.measurements, 1)
	m := measurements.measurements[0]
	assert.Equal(t, existing.ID(), m.AthleteID())
	assert.Equal(t, measurement.MetricFly10Time, m.Metric())
	assert.Equal(t, "1.42", m.Value().String())
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "measurement skipped")
}

func TestImportService_PublishesCompletionEvent(t *testing.T) {
	athletes := &memAthleteRepo{}
	bus := eventbus.NewEventPublisher(testLogger())

	var got services.ImportCompletedEvent
	bus.Subscribe(func(e services.ImportCompletedEvent) { got = e })

	svc := newService(athletes, &memTeamRepo{}, &memMeasurementRepo{}).WithPublisher(bus)

	_, err := svc.Run(context.Background(), testTenantID,
		"firstName,lastName\nAlice,Nguyen\n", services.ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, testTenantID, got.TenantID)
	assert.True(t, got.DryRun)
	assert.Equal(t, 1, got.Result.Summary.Created)
}

func TestImportService_MeasurementDryRunMatchesOnly(t *testing.T) {
	existing := seededAthlete("Alice", "Nguyen", "Thunder FC")
	athletes := &memAthleteRepo{athletes: []athlete.Athlete{existing}}
	measurements := &memMeasurementRepo{}
	svc := newService(athletes, &memTeamRepo{}, measurements)

	text := "firstName,lastName,teamName,date,metric,value,units\nAlice,Nguyen,Thunder FC,2026-05-01,RSI,2.1,\n"

	result, err := svc.Run(context.Background(), testTenantID, text, services.ImportOptions{
		Kind:   importer.KindMeasurement,
		DryRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.Matched)
	assert.Empty(t, measurements.measurements)
}
