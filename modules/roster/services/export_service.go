package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/rosterhq/roster-sdk/modules/roster/domain/aggregates/athlete"
	"github.com/rosterhq/roster-sdk/modules/roster/importer"
	"github.com/rosterhq/roster-sdk/pkg/csvsafe"
)

// ExportService renders roster data back into the import header contract, so
// an exported file re-imports without edits.
type ExportService struct {
	athletes athlete.Repository
}

func NewExportService(athletes athlete.Repository) *ExportService {
	return &ExportService{athletes: athletes}
}

// ExportCSV renders every athlete for the tenant as sanitized delimited text.
func (s *ExportService) ExportCSV(ctx context.Context, tenantID uuid.UUID) (string, error) {
	athletes, err := s.athletes.ListCandidates(ctx, tenantID)
	if err != nil {
		return "", errors.Wrap(err, "list athletes for export")
	}

	rows := make([]map[string]string, len(athletes))
	for i, a := range athletes {
		rows[i] = athleteToRow(a)
	}
	return csvsafe.Serialize(importer.AthleteHeaders, rows), nil
}

// ExportExcel renders the same data as an XLSX workbook. Cells are written as
// explicit strings, so spreadsheet applications never evaluate them and the
// quote-prefix sanitization used for delimited text is unnecessary.
func (s *ExportService) ExportExcel(ctx context.Context, tenantID uuid.UUID, sheetName string) (*excelize.File, error) {
	athletes, err := s.athletes.ListCandidates(ctx, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "list athletes for export")
	}

	f := excelize.NewFile()
	sheet := clampSheetName(sheetName)
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, errors.Wrap(err, "rename sheet")
		}
	}

	for col, header := range importer.AthleteHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, "header cell name")
		}
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "write header")
		}
	}

	for rowIdx, a := range athletes {
		values := athleteToRow(a)
		for col, header := range importer.AthleteHeaders {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, errors.Wrap(err, "data cell name")
			}
			if err := f.SetCellStr(sheet, cell, values[header]); err != nil {
				return nil, errors.Wrapf(err, "write row %d", rowIdx+2)
			}
		}
	}
	return f, nil
}

// athleteToRow maps an aggregate onto the import header contract. Multi-value
// columns are semicolon-joined so re-import splits them back apart.
func athleteToRow(a athlete.Athlete) map[string]string {
	row := map[string]string{
		"firstName":    a.FirstName(),
		"lastName":     a.LastName(),
		"gender":       string(a.Gender()),
		"emails":       strings.Join(a.Emails(), ";"),
		"phoneNumbers": strings.Join(a.PhoneNumbers(), ";"),
		"sports":       strings.Join(a.Sports(), ";"),
		"school":       a.School(),
	}
	if !a.BirthDate().IsZero() {
		row["birthDate"] = a.BirthDate().Format("2006-01-02")
	}
	if a.BirthYear() > 0 {
		row["birthYear"] = strconv.Itoa(a.BirthYear())
	}
	if a.GraduationYear() > 0 {
		row["graduationYear"] = strconv.Itoa(a.GraduationYear())
	}
	if a.HeightInches() > 0 {
		row["height"] = strconv.Itoa(a.HeightInches())
	}
	if a.WeightPounds() > 0 {
		row["weight"] = strconv.Itoa(a.WeightPounds())
	}
	if teams := a.Teams(); len(teams) > 0 {
		row["teamName"] = teams[0].Name
	}
	return row
}

// clampSheetName enforces the XLSX 31-character sheet name limit and strips
// characters the format rejects.
func clampSheetName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Sheet1"
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
