package timeentry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func (f Fields) validate() error {
	if err := validate.Struct(f); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return fromFieldError(fieldErrors[0])
		}
		return fmt.Errorf("validate entry: %w", err)
	}

	if f.Start.IsZero() {
		return &ValidationError{Field: "start", Reason: "is required"}
	}
	if f.Duration > MaxDuration {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be at most %d seconds, got %d", MaxDuration, f.Duration)}
	}
	for i, tag := range f.Tags {
		if strings.TrimSpace(tag) == "" {
			return &ValidationError{Field: fmt.Sprintf("tags[%d]", i), Reason: "must not be blank"}
		}
	}
	return nil
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gt":
		reason = fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		reason = fmt.Sprintf("must be %d (running) or a non-negative number of seconds, got %v", RunningDuration, fe.Value())
	default:
		reason = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return &ValidationError{Field: field, Reason: reason}
}
