// Package validation checks service inputs with validator/v10 and reports
// failures as domain validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/streakboard/streakboard-server/internal/errors"
)

// usernamePattern allows 3 to 32 letters, digits, dots, dashes and underscores.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// labelPattern limits task labels to short slugs.
var labelPattern = regexp.MustCompile(`^[\p{L}\p{N} _-]{1,32}$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(jsonFieldName)

	//nolint:errcheck // registration only fails on empty tag names
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	//nolint:errcheck // registration only fails on empty tag names
	_ = v.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return labelPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// jsonFieldName reports fields by their JSON name so details keys match
// the request body.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Validate validates a struct and returns a *errors.Error with code
// VALIDATION_ERROR whose details map each failing field to a message.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails(summary(validationErrs), fieldErrors)
}

// summary names the first failing field.
func summary(errs validator.ValidationErrors) string {
	if len(errs) == 1 {
		return "invalid " + errs[0].Field()
	}
	return fmt.Sprintf("invalid %s and %d more field(s)", errs[0].Field(), len(errs)-1)
}

//nolint:gocyclo // Switch statement covering validation tags is intentionally exhaustive.
func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "username":
		return "must be 3-32 letters, digits, dots, dashes or underscores"
	case "label":
		return "must be a short word of letters, digits, spaces, dashes or underscores"
	case "datetime":
		return "must be a date in " + e.Param() + " format"
	case "dive":
		return "contains an invalid item"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
