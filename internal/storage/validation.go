package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// ValidateTransactionInput checks a parsed transaction and fills defaults.
// Type defaults to debit. Failures wrap common.ErrValidation.
func ValidateTransactionInput(input model.TransactionInput) (model.TransactionInput, error) {
	input.Category = strings.TrimSpace(input.Category)
	if input.Type == "" {
		input.Type = model.TransactionTypeDebit
	}

	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			parts := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return input, fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(parts, ", "))
		}
		return input, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return input, nil
}
