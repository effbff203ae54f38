package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/measurement"
	"github.com/rosterhq/roster-sdk/modules/roster/domain/entities/team"
	"github.com/rosterhq/roster-sdk/modules/roster/importer"
	"github.com/rosterhq/roster-sdk/pkg/batch"
	"github.com/rosterhq/roster-sdk/pkg/csvsafe"
	"github.com/rosterhq/roster-sdk/pkg/eventbus"
)

// ImportCompletedEvent is published after each run, dry or applied.
type ImportCompletedEvent struct {
	TenantID uuid.UUID
	Kind     importer.Kind
	DryRun   bool
	Result   importer.AggregatedImportResult
}

// ImportOptions controls one import run.
type ImportOptions struct {
	Kind         importer.Kind
	MaxBatchSize int
	Workers      int
	// Delimiter defaults to a comma when zero.
	Delimiter rune
	// DryRun matches and reports without writing to the store.
	DryRun bool
}

// ImportService drives the bulk import reconciliation pipeline: codec,
// normalization, contact repair, chunking, per-batch matching and write-back,
// and cross-batch aggregation. The pure stages live in the importer package;
// this service owns the effectful store loop.
type ImportService struct {
	athletes     athlete.Repository
	teams        team.Repository
	measurements measurement.Repository
	logger       *logrus.Logger
	publisher    eventbus.EventBus
}

func NewImportService(
	athletes athlete.Repository,
	teams team.Repository,
	measurements measurement.Repository,
	logger *logrus.Logger,
) *ImportService {
	return &ImportService{
		athletes:     athletes,
		teams:        teams,
		measurements: measurements,
		logger:       logger,
	}
}

// WithPublisher attaches an event bus; completion events are dropped when
// none is set.
func (s *ImportService) WithPublisher(bus eventbus.EventBus) *ImportService {
	s.publisher = bus
	return s
}

// preparedRow carries one row through the pre-batch stages. Rows that failed
// validation stay in the set so their errors remain attributable to the batch
// that would have processed them.
type preparedRow struct {
	line        int
	athleteRow  importer.AthleteRow
	measureRow  importer.MeasurementRow
	fieldErrors []importer.FieldError
	warnings    []string
}

// Run executes one import. Only a missing header line fails the run outright;
// every other condition is reported inside the AggregatedImportResult.
func (s *ImportService) Run(ctx context.Context, tenantID uuid.UUID, text string, opts ImportOptions) (importer.AggregatedImportResult, error) {
	if opts.Kind == "" {
		opts.Kind = importer.KindAthlete
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	var parseOpts []csvsafe.Option
	if opts.Delimiter != 0 {
		parseOpts = append(parseOpts, csvsafe.WithDelimiter(opts.Delimiter))
	}
	doc, err := csvsafe.Parse(text, parseOpts...)
	if err != nil {
		importMetricsSingleton().runsTotal.WithLabelValues(string(opts.Kind), "failed").Inc()
		return importer.AggregatedImportResult{}, fmt.Errorf("parse import text: %w", err)
	}

	now := time.Now().UTC()
	prepared := make([]preparedRow, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		prepared = append(prepared, s.prepareRow(row, opts.Kind, now))
	}

	batches := batch.Chunk(prepared, opts.MaxBatchSize)
	results := make([]importer.BatchResult, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			started := time.Now()
			results[i] = s.processBatch(gctx, tenantID, b, opts)
			importMetricsSingleton().batchLatency.Observe(time.Since(started).Seconds())
			return nil
		})
	}
	// Workers report failures inside their BatchResult; Wait only propagates
	// context cancellation.
	if err := g.Wait(); err != nil {
		return importer.AggregatedImportResult{}, err
	}

	agg := importer.Aggregate(results)

	m := importMetricsSingleton()
	m.rowsTotal.WithLabelValues(string(opts.Kind), string(importer.ActionCreated)).Add(float64(agg.Summary.Created))
	m.rowsTotal.WithLabelValues(string(opts.Kind), string(importer.ActionUpdated)).Add(float64(agg.Summary.Updated))
	m.rowsTotal.WithLabelValues(string(opts.Kind), string(importer.ActionMatched)).Add(float64(agg.Summary.Matched))
	m.rowsTotal.WithLabelValues(string(opts.Kind), string(importer.ActionSkipped)).Add(float64(agg.Summary.Skipped))
	m.runsTotal.WithLabelValues(string(opts.Kind), "completed").Inc()

	s.logger.WithFields(logrus.Fields{
		"tenant":  tenantID,
		"kind":    opts.Kind,
		"rows":    agg.TotalRows,
		"created": agg.Summary.Created,
		"updated": agg.Summary.Updated,
		"matched": agg.Summary.Matched,
		"skipped": agg.Summary.Skipped,
		"errors":  len(agg.Errors),
		"dry_run": opts.DryRun,
	}).Info("import run completed")

	if s.publisher != nil {
		s.publisher.Publish(ImportCompletedEvent{
			TenantID: tenantID,
			Kind:     opts.Kind,
			DryRun:   opts.DryRun,
			Result:   agg,
		})
	}
	return agg, nil
}

func (s *ImportService) prepareRow(row csvsafe.Row, kind importer.Kind, now time.Time) preparedRow {
	p := preparedRow{line: row.Line}

	switch kind {
	case importer.KindMeasurement:
		parsed, errs := importer.ParseMeasurementRow(row.Line, row.Values, now)
		p.measureRow = parsed
		p.fieldErrors = errs
	default:
		parsed, errs := importer.ParseAthleteRow(row.Line, row.Values, now)
		contacts := importer.ResolveContacts(row.Values)
		parsed.Emails = contacts.Emails
		parsed.PhoneNumbers = contacts.PhoneNumbers
		for _, w := range contacts.Warnings {
			p.warnings = append(p.warnings, fmt.Sprintf("line %d: %s", row.Line, w))
		}
		p.athleteRow = parsed
		p.fieldErrors = errs
	}
	return p
}

func (s *ImportService) processBatch(ctx context.Context, tenantID uuid.UUID, b batch.Batch[preparedRow], opts ImportOptions) importer.BatchResult {
	result := importer.BatchResult{Index: b.Index, Rows: len(b.Rows)}

	snapshot, err := s.athletes.ListCandidates(ctx, tenantID)
	if err != nil {
		// The whole batch fails, other batches are unaffected.
		s.logger.WithError(err).WithField("batch", b.Index).Error("candidate snapshot failed")
		for _, row := range b.Rows {
			result.Errors = append(result.Errors, importer.RowError{
				Line:    row.line,
				Message: fmt.Sprintf("candidate lookup failed: %v", err),
			})
			result.Summary.Skipped++
		}
		return result
	}

	candidates := make([]importer.Candidate, len(snapshot))
	for i, a := range snapshot {
		candidates[i] = toCandidate(a)
	}

	var teams *teamCache
	if opts.Kind != importer.KindMeasurement {
		teams, err = s.loadTeams(ctx, tenantID)
		if err != nil {
			for _, row := range b.Rows {
				result.Errors = append(result.Errors, importer.RowError{
					Line:    row.line,
					Message: fmt.Sprintf("team lookup failed: %v", err),
				})
				result.Summary.Skipped++
			}
			return result
		}
	}

	for _, row := range b.Rows {
		result.Warnings = append(result.Warnings, row.warnings...)

		if len(row.fieldErrors) > 0 {
			for _, fe := range row.fieldErrors {
				result.Errors = append(result.Errors, importer.RowError{
					Line:    row.line,
					Field:   fe.Field,
					Message: fe.Message,
				})
			}
			result.Summary.Skipped++
			result.RowResults = append(result.RowResults, importer.RowOutcome{
				Line:   row.line,
				Action: importer.ActionSkipped,
			})
			continue
		}

		switch opts.Kind {
		case importer.KindMeasurement:
			s.processMeasurementRow(ctx, tenantID, row, candidates, snapshot, opts, &result)
		default:
			s.processAthleteRow(ctx, tenantID, row, candidates, snapshot, teams, opts, &result)
		}
	}
	return result
}

func (s *ImportService) processAthleteRow(
	ctx context.Context,
	tenantID uuid.UUID,
	row preparedRow,
	candidates []importer.Candidate,
	snapshot []athlete.Athlete,
	teams *teamCache,
	opts ImportOptions,
	result *importer.BatchResult,
) {
	ar := row.athleteRow
	match := importer.FindBestMatch(ar.Criteria(), candidates)

	if match.RequiresManualReview {
		result.Summary.Skipped++
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"line %d: %s match for %s %s (confidence %d) requires manual review",
			row.line, match.Tier, ar.FirstName, ar.LastName, match.Confidence))
		result.RowResults = append(result.RowResults, importer.RowOutcome{
			Line:       row.line,
			Action:     importer.ActionSkipped,
			Tier:       match.Tier,
			Confidence: match.Confidence,
		})
		return
	}

	if match.Tier == importer.TierNone {
		s.createAthlete(ctx, tenantID, row, teams, opts, result)
		return
	}

	// Confident match: merge the row into the existing record.
	existing := snapshot[indexOfCandidate(snapshot, match.Best.Candidate.ID)]
	outcome := importer.RowOutcome{
		Line:       row.line,
		Tier:       match.Tier,
		Confidence: match.Confidence,
		EntityID:   existing.ID(),
	}
	if opts.DryRun {
		result.Summary.Matched++
		outcome.Action = importer.ActionMatched
		result.RowResults = append(result.RowResults, outcome)
		return
	}

	updated := existing.
		WithProfile(ar.BirthDate, ar.BirthYear, ar.GraduationYear, ar.Gender).
		WithContacts(ar.Emails, ar.PhoneNumbers).
		WithPhysicals(ar.HeightInches, ar.WeightPounds).
		WithSchool(ar.School).
		WithCompetitiveLevel(ar.CompetitiveLevel).
		WithSports(ar.Sports)
	if ar.TeamName != "" {
		if tm, err := s.resolveTeam(ctx, tenantID, ar.TeamName, teams, opts, result); err == nil && !tm.IsZero() {
			updated = updated.WithTeam(athlete.TeamMembership{TeamID: tm.ID(), Name: tm.Name()})
		}
	}

	if err := s.athletes.Update(ctx, updated); err != nil {
		result.Errors = append(result.Errors, importer.RowError{
			Line:    row.line,
			Message: fmt.Sprintf("update athlete: %v", err),
		})
		result.Summary.Skipped++
		return
	}
	result.Summary.Updated++
	outcome.Action = importer.ActionUpdated
	result.RowResults = append(result.RowResults, outcome)
}

func (s *ImportService) createAthlete(
	ctx context.Context,
	tenantID uuid.UUID,
	row preparedRow,
	teams *teamCache,
	opts ImportOptions,
	result *importer.BatchResult,
) {
	ar := row.athleteRow
	outcome := importer.RowOutcome{Line: row.line, Action: importer.ActionCreated, Tier: importer.TierNone}

	if opts.DryRun {
		result.Summary.Created++
		result.RowResults = append(result.RowResults, outcome)
		return
	}

	entity := athlete.New(tenantID, ar.FirstName, ar.LastName).
		WithProfile(ar.BirthDate, ar.BirthYear, ar.GraduationYear, ar.Gender).
		WithContacts(ar.Emails, ar.PhoneNumbers).
		WithPhysicals(ar.HeightInches, ar.WeightPounds).
		WithSchool(ar.School).
		WithCompetitiveLevel(ar.CompetitiveLevel).
		WithSports(ar.Sports)
	if ar.TeamName != "" {
		if tm, err := s.resolveTeam(ctx, tenantID, ar.TeamName, teams, opts, result); err == nil && !tm.IsZero() {
			entity = entity.WithTeam(athlete.TeamMembership{TeamID: tm.ID(), Name: tm.Name()})
		}
	}

	created, err := s.athletes.Create(ctx, entity)
	if err != nil {
		result.Errors = append(result.Errors, importer.RowError{
			Line:    row.line,
			Message: fmt.Sprintf("create athlete: %v", err),
		})
		result.Summary.Skipped++
		return
	}
	result.Summary.Created++
	outcome.EntityID = created.ID()
	result.CreatedAthletes = append(result.CreatedAthletes, importer.EntityRef{
		ID:    created.ID(),
		Label: fmt.Sprintf("%s %s", created.FirstName(), created.LastName()),
	})
	result.RowResults = append(result.RowResults, outcome)
}

func (s *ImportService) processMeasurementRow(
	ctx context.Context,
	tenantID uuid.UUID,
	row preparedRow,
	candidates []importer.Candidate,
	snapshot []athlete.Athlete,
	opts ImportOptions,
	result *importer.BatchResult,
) {
	mr := row.measureRow
	match := importer.FindBestMatch(mr.Criteria(), candidates)

	if match.Tier == importer.TierNone || match.RequiresManualReview {
		result.Summary.Skipped++
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"line %d: no confident athlete match for %s %s; measurement skipped",
			row.line, mr.FirstName, mr.LastName))
		result.RowResults = append(result.RowResults, importer.RowOutcome{
			Line:       row.line,
			Action:     importer.ActionSkipped,
			Tier:       match.Tier,
			Confidence: match.Confidence,
		})
		return
	}

	owner := snapshot[indexOfCandidate(snapshot, match.Best.Candidate.ID)]
	outcome := importer.RowOutcome{
		Line:       row.line,
		Tier:       match.Tier,
		Confidence: match.Confidence,
		EntityID:   owner.ID(),
	}

	if opts.DryRun {
		result.Summary.Matched++
		outcome.Action = importer.ActionMatched
		result.RowResults = append(result.RowResults, outcome)
		return
	}

	entity := measurement.New(tenantID, owner.ID(), mr.Date, mr.Metric, mr.Value, mr.Units).
		WithDetails(mr.FlyInDistance, mr.Age, mr.Notes)
	if _, err := s.measurements.Create(ctx, entity); err != nil {
		result.Errors = append(result.Errors, importer.RowError{
			Line:    row.line,
			Message: fmt.Sprintf("create measurement: %v", err),
		})
		result.Summary.Skipped++
		return
	}
	result.Summary.Created++
	outcome.Action = importer.ActionCreated
	result.RowResults = append(result.RowResults, outcome)
}

// teamCache holds the per-batch team snapshot plus teams created during the
// batch, keyed by folded name.
type teamCache struct {
	byName map[string]team.Team
	names  []string
}

func (s *ImportService) loadTeams(ctx context.Context, tenantID uuid.UUID) (*teamCache, error) {
	teams, err := s.teams.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	cache := &teamCache{byName: make(map[string]team.Team, len(teams))}
	for _, t := range teams {
		cache.put(t)
	}
	return cache, nil
}

func (c *teamCache) put(t team.Team) {
	key := strings.ToLower(strings.TrimSpace(t.Name()))
	if _, ok := c.byName[key]; ok {
		return
	}
	c.byName[key] = t
	c.names = append(c.names, t.Name())
}

// resolveTeam finds an existing team by folded or fuzzy name, creating one
// when nothing matches. Dry runs never write; the caller gets a zero team.
func (s *ImportService) resolveTeam(
	ctx context.Context,
	tenantID uuid.UUID,
	name string,
	cache *teamCache,
	opts ImportOptions,
	result *importer.BatchResult,
) (team.Team, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if t, ok := cache.byName[key]; ok {
		return t, nil
	}

	if ranks := fuzzy.RankFindNormalizedFold(name, cache.names); len(ranks) > 0 {
		sort.Sort(ranks)
		if t, ok := cache.byName[strings.ToLower(ranks[0].Target)]; ok {
			return t, nil
		}
	}

	if opts.DryRun {
		return team.Team{}, nil
	}

	created, err := s.teams.Create(ctx, team.New(tenantID, name, ""))
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("create team %q failed: %v", name, err))
		return team.Team{}, err
	}
	cache.put(created)
	result.CreatedTeams = append(result.CreatedTeams, importer.EntityRef{
		ID:    created.ID(),
		Label: created.Name(),
	})
	return created, nil
}

func toCandidate(a athlete.Athlete) importer.Candidate {
	teams := make([]string, len(a.Teams()))
	for i, t := range a.Teams() {
		teams[i] = t.Name
	}
	return importer.Candidate{
		ID:        a.ID(),
		FirstName: a.FirstName(),
		LastName:  a.LastName(),
		Emails:    a.Emails(),
		BirthYear: a.BirthYear(),
		Teams:     teams,
	}
}

func indexOfCandidate(snapshot []athlete.Athlete, id uuid.UUID) int {
	for i, a := range snapshot {
		if a.ID() == id {
			return i
		}
	}
	return 0
}
