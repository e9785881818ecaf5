package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tags reported by the cross-section checks.
const (
	tagWithinRequestSize = "within_request_size"
	tagSeedExtension     = "seed_extension"
)

var validate = newValidator()

// newValidator names fields by their koanf keys, so errors read like the YAML
// an operator wrote.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	v.RegisterStructValidation(validateSections, Config{})

	return v
}

// validateSections checks rules that span sections.
func validateSections(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}

	if cfg.Admin.MaxImportSize > cfg.Server.MaxRequestSize {
		sl.ReportError(cfg.Admin.MaxImportSize, "admin.max_import_size", "MaxImportSize", tagWithinRequestSize, "")
	}

	if seed := cfg.Viewer.DefaultVersesFile; seed != "" {
		switch strings.ToLower(filepath.Ext(seed)) {
		case ".json", ".yaml", ".yml":
		default:
			sl.ReportError(seed, "viewer.default_verses_file", "DefaultVersesFile", tagSeedExtension, "")
		}
	}
}

// Validate checks the whole configuration and lists every problem found.
// The service refuses to start on an invalid configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		path := formatFieldPath(e.Namespace())
		lines = append(lines, fmt.Sprintf("%s (%s)", formatFieldError(path, e), envName(path)))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case tagWithinRequestSize:
		return field + " must not exceed server.max_request_size"
	case tagSeedExtension:
		return field + " must end in .json, .yaml or .yml"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath drops the root type: "Config.admin.session_ttl" -> "admin.session_ttl".
func formatFieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return strings.ToLower(namespace)
	}

	return path
}

// envName is the variable that overrides path: admin.session_ttl -> APP_ADMIN__SESSION_TTL.
func envName(path string) string {
	return "APP_" + strings.ToUpper(strings.ReplaceAll(path, ".", "__"))
}
