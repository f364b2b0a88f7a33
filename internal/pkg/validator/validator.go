// Package validator wraps go-playground/validator with the struct tags used
// by safewatch and a uniform error format.
//
// Besides the built-in tags it registers:
//
//	hexaddr  an EVM address, with or without checksum
package validator

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error of the chain returned by Validate.
var ErrValidationFailed = errors.New("struct validation failed")

var validator *gvalidator.Validate

// errStringFormat describes one failed field.
//
// Example: "'Safe': value '0x' does not meet the requirements for the 'hexaddr' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	_ = validator.RegisterValidation("hexaddr", isHexAddress)
}

func isHexAddress(fl gvalidator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// formatError turns validator errors into ErrValidationFailed joined with one
// error per field. Other errors are returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Namespace(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` tags.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
