package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xavierca1/prospector/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationFailure carries every field that failed. The mutation it guarded
// was not applied.
type ValidationFailure struct {
	Errors []ValidationError
}

func (f *ValidationFailure) Error() string {
	parts := make([]string, len(f.Errors))
	for i, e := range f.Errors {
		parts[i] = e.Field + " (" + e.Message + ")"
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func IsValidationFailure(err error) bool {
	var vf *ValidationFailure
	return errors.As(err, &vf)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("prospect_status", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || entity.Status(s).Valid()
	})
	return v
}

// ValidateLogProspectInput returns nil when first name, company and email are
// present and well formed.
func ValidateLogProspectInput(input LogProspectInput) []ValidationError {
	input = input.trimmed()

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "input", Message: err.Error()}}
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   jsonFieldName(fe.StructField()),
			Message: messageFor(fe),
		})
	}
	return errs
}

func validateStatus(status entity.Status) []ValidationError {
	if status.Valid() {
		return nil
	}
	return []ValidationError{{Field: "status", Message: "must be one of " + statusList()}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "prospect_status":
		return "must be one of " + statusList()
	default:
		return "is invalid"
	}
}

func statusList() string {
	names := make([]string, 0, len(entity.Statuses()))
	for _, s := range entity.Statuses() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

var jsonNames = map[string]string{
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Company":   "company",
	"Domain":    "domain",
	"Email":     "email",
	"Title":     "title",
	"Status":    "status",
}

func jsonFieldName(structField string) string {
	if name, ok := jsonNames[structField]; ok {
		return name
	}
	return strings.ToLower(structField)
}
