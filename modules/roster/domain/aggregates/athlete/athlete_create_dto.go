package athlete

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rosterhq/roster-sdk/pkg/constants"
)

type CreateDTO struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Gender           string `json:"gender" validate:"omitempty,oneof=Male Female 'Not Specified'"`
	BirthYear        int    `json:"birth_year" validate:"omitempty,min=1900"`
	GraduationYear   int    `json:"graduation_year" validate:"omitempty,min=1950,max=2100"`
	HeightInches     int    `json:"height_inches" validate:"omitempty,min=36,max=84"`
	WeightPounds     int    `json:"weight_pounds" validate:"omitempty,min=50,max=400"`
	School           string `json:"school"`
	CompetitiveLevel int    `json:"competitive_level" validate:"omitempty,min=1,max=5"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Gender = strings.TrimSpace(d.Gender)
	d.School = strings.TrimSpace(d.School)
}

// Ok validates the DTO, returning field-keyed messages when invalid.
func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()

	errs := constants.Validate.Struct(d)
	if errs == nil {
		return map[string]string{}, true
	}

	out := make(map[string]string)
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = fmt.Sprintf("failed %q validation", err.Tag())
	}
	return out, false
}
