package validation

import (
	"time"

	"github.com/go-playground/validator/v10"

	"appdash/internal/dates"
	"appdash/pkg/models"
)

// ValidateCanonicalDate accepts real calendar dates in YYYY-MM-DD form
func ValidateCanonicalDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !dates.IsCanonical(value) {
		return false
	}
	_, err := time.Parse(dates.Layout, value)
	return err == nil
}

// ValidateSortColumn accepts the sortable record fields
func ValidateSortColumn(fl validator.FieldLevel) bool {
	return models.Field(fl.Field().String()).IsValid()
}

// RegisterDashboardValidators registers the dashboard request validators
func RegisterDashboardValidators(v *validator.Validate) {
	v.RegisterValidation("canonical_date", ValidateCanonicalDate)
	v.RegisterValidation("sort_column", ValidateSortColumn)
}

// New returns a validator with the dashboard validators registered
func New() *validator.Validate {
	v := validator.New()
	RegisterDashboardValidators(v)
	return v
}
