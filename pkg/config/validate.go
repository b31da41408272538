package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// Validate checks field constraints of every node definition and the wiring between them.
// All failures are reported at once in a *domain.AggregateError.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		errs = append(errs, formatValidationError(err)...)
	}

	kinds := make(map[string]domain.NodeKind, c.Len())
	entries := c.Entries()
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue // reported by the struct tags
		}
		if _, dup := kinds[e.Name]; dup {
			errs = append(errs, &domain.ValidationError{Key: e.Name, Reason: "duplicate node name"})
			continue
		}
		kinds[e.Name] = e.Kind
	}

	for _, e := range entries {
		for _, in := range e.Inputs {
			inKind, ok := kinds[in]
			switch {
			case !ok:
				errs = append(errs, &domain.ValidationError{Key: e.Name, Reason: "unknown input", Value: in})
			case in == e.Name:
				errs = append(errs, &domain.ValidationError{Key: e.Name, Reason: "node cannot be its own input"})
			case !e.Kind.Accepts(inKind):
				errs = append(errs, &domain.ValidationError{
					Key:    e.Name,
					Reason: fmt.Sprintf("%s cannot take a %s as input", e.Kind, inKind),
					Value:  in,
				})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &domain.AggregateError{Errors: errs}
}

// ValidateSettings checks the persisted settings.
func ValidateSettings(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		return &domain.AggregateError{Errors: formatValidationError(err)}
	}
	return nil
}

// formatValidationError converts validator errors to domain validation errors.
func formatValidationError(err error) []error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}

	out := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		var reason string
		switch e.Tag() {
		case "required":
			reason = "field is required"
		case "gte", "min":
			reason = "must be at least " + e.Param()
		case "lte", "max":
			reason = "must not exceed " + e.Param()
		case "ltfield":
			reason = "must be lower than " + e.Param()
		case "oneof":
			reason = "must be one of: " + e.Param()
		case "unique":
			reason = "must not contain duplicates"
		default:
			reason = fmt.Sprintf("validation failed (%s)", e.Tag())
		}
		out = append(out, &domain.ValidationError{Key: e.Namespace(), Reason: reason, Value: e.Value()})
	}
	return out
}
