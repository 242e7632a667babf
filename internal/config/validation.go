// Package config provides configuration management for the trade analytics service.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField validates constraints spanning multiple sections
func validateCrossField(cfg *Config) error {
	if cfg.Reconcile.Enabled {
		if cfg.Reconcile.APIURL == "" {
			return fmt.Errorf("reconcile.api_url is required when reconciliation is enabled")
		}
		if cfg.Reconcile.APIKey == "" || cfg.Reconcile.APISecret == "" {
			return fmt.Errorf("reconcile credentials are required when reconciliation is enabled")
		}
	}
	if cfg.Scheduler.Enabled && cfg.Scheduler.EquitySnapshotCron == "" {
		return fmt.Errorf("scheduler.equity_snapshot_cron is required when the scheduler is enabled")
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf(" field '%s' failed rule '%s';", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%s", msg)
}
