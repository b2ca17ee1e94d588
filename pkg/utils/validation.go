package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field paths using the names clients send on the wire
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		_, err := ParseTimestamp(fl.Field().String())
		return err == nil
	})

	return v
}

// ValidateStruct validates a struct based on its validation tags. The first
// failing field is reported as a validation AppError whose details carry the
// field path and the failed rule.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return pkgerrors.NewValidationError(err.Error())
	}

	first := validationErrors[0]
	field := fieldPath(first.Namespace())
	appErr := pkgerrors.NewFieldValidationError(field, first.Tag(), formatFieldError(field, first))
	if len(validationErrors) > 1 {
		issues := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			issues = append(issues, formatFieldError(fieldPath(e.Namespace()), e))
		}
		appErr.WithDetail("issues", issues)
	}
	return appErr
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func formatFieldError(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "timestamp":
		return fmt.Sprintf("%s must be an ISO-8601 timestamp", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
