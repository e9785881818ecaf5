package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

var (
	// ErrBinding wraps a body that could not be decoded.
	ErrBinding = errors.New("binding failed")

	// ErrValidation wraps a decoded body that breaks its validate tags.
	ErrValidation = errors.New("validation failed")
)

// validate reports fields by their json names.
var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// notempty rejects whitespace-only text, which the stored verse would trim away.
	_ = v.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
})

// Bind decodes the request body according to its Content-Type (JSON or a
// form post) into v and checks v's validate tags.
func Bind(c *gin.Context, v any) error {
	if err := c.ShouldBind(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	if err := validate().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// ToDomainError turns a Bind failure into a domain validation error that
// shows message to the operator. The first offending field, by name, is
// recorded. Other errors pass through unchanged.
func ToDomainError(err error, message string) error {
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrBinding) && !errors.Is(err, ErrValidation) {
		return err
	}

	field := ""
	for name := range fieldMessages(err) {
		if field == "" || name < field {
			field = name
		}
	}

	return domain.NewValidationError(field, message)
}

// fieldMessages maps each offending json field to a description of the rule it broke.
func fieldMessages(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}

	return out
}

func fieldMessage(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notempty":
		return "must not be empty"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + unit
	case "max":
		return "must be at most " + fe.Param() + unit
	default:
		return "failed validation: " + fe.Tag()
	}
}
