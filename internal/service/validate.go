package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Client-facing validation messages.
const (
	msgMissingField = "all fields are required"
	msgInvalidEmail = "invalid email address"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names (firstName, not FirstName).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return v
}

// validateStruct runs struct validation and converts failures into a
// ValidationError. A missing field wins over any other failure.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return &ValidationError{Message: msgMissingField}
		}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "email":
		return &ValidationError{Message: msgInvalidEmail}
	case "min":
		return &ValidationError{Message: fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())}
	case "max":
		return &ValidationError{Message: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())}
	default:
		return &ValidationError{Message: fmt.Sprintf("%s is invalid", fe.Field())}
	}
}
