package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/importer"
	"github.com/rosterhq/roster-sdk/modules/roster/services"
	"github.com/rosterhq/roster-sdk/pkg/csvsafe"
)

func exportFixture() athlete.Athlete {
	return athlete.Hydrate(
		testTenantID, uuid.New(), "Alice", "Nguyen",
		time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC), 2008, 2026, athlete.GenderFemale,
		[]string{"alice@example.com", "a.nguyen@school.edu"},
		[]string{"512-555-1234"},
		[]string{"Soccer", "Track"},
		64, 120, "Central High", 3,
		[]athlete.TeamMembership{{TeamID: uuid.New(), Name: "Thunder FC"}},
		time.Now(), time.Now(),
	)
}

func TestExportService_CSVRoundTripsThroughImportHeaders(t *testing.T) {
	repo := &memAthleteRepo{athletes: []athlete.Athlete{exportFixture()}}
	svc := services.NewExportService(repo)

	out, err := svc.ExportCSV(context.Background(), testTenantID)
	require.NoError(t, err)

	doc, err := csvsafe.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, importer.AthleteHeaders, doc.Headers)
	require.Len(t, doc.Rows, 1)

	row := doc.Rows[0].Values
	assert.Equal(t, "Alice", row["firstName"])
	assert.Equal(t, "2008-03-14", row["birthDate"])
	assert.Equal(t, "alice@example.com;a.nguyen@school.edu", row["emails"])
	assert.Equal(t, "Thunder FC", row["teamName"])

	// Export output parses straight back into a valid import row.
	parsed, errs := importer.ParseAthleteRow(doc.Rows[0].Line, row, time.Now())
	require.Empty(t, errs)
	assert.Equal(t, 64, parsed.HeightInches)
	assert.Equal(t, athlete.GenderFemale, parsed.Gender)
	assert.Equal(t, []string{"Soccer", "Track"}, parsed.Sports)
}

func TestExportService_CSVSanitizesFormulaCells(t *testing.T) {
	hostile := athlete.Hydrate(
		testTenantID, uuid.New(), "=cmd|' /C calc'!A0", "Nguyen",
		time.Time{}, 0, 0, athlete.GenderNotSpecified,
		nil, nil, nil, 0, 0, "", 0, nil,
		time.Now(), time.Now(),
	)
	repo := &memAthleteRepo{athletes: []athlete.Athlete{hostile}}
	svc := services.NewExportService(repo)

	out, err := svc.ExportCSV(context.Background(), testTenantID)
	require.NoError(t, err)
	assert.Contains(t, out, `'=cmd`)

	// The neutralized cell survives a re-parse without regaining its trigger.
	doc, err := csvsafe.Parse(out)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	assert.True(t, strings.HasPrefix(doc.Rows[0].Values["firstName"], "'="))
}

func TestExportService_ExcelWritesStringCells(t *testing.T) {
	fixture := exportFixture()
	repo := &memAthleteRepo{athletes: []athlete.Athlete{fixture}}
	svc := services.NewExportService(repo)

	f, err := svc.ExportExcel(context.Background(), testTenantID, "Roster Export")
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Roster Export", sheet)

	got, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "firstName", got)

	got, err = f.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got)

	got, err = f.GetCellValue(sheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com;a.nguyen@school.edu", got)
}

func TestExportService_ExcelClampsSheetName(t *testing.T) {
	repo := &memAthleteRepo{}
	svc := services.NewExportService(repo)

	f, err := svc.ExportExcel(context.Background(), testTenantID, strings.Repeat("x", 64)+"[/]")
	require.NoError(t, err)
	defer f.Close()

	name := f.GetSheetName(0)
	assert.LessOrEqual(t, len(name), 31)
}
