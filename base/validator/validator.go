package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/domain"
)

// IsValidId returns is an entity id valid or not
func IsValidId(id string) bool {
	return domain.IsValidId(id)
}

// IsPositive reports whether a money amount is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.IsPositive()
}

// IsNonNegative reports whether an optional money amount is absent or >= 0
func IsNonNegative(d *decimal.Decimal) bool {
	return d == nil || !d.IsNegative()
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

// Validate runs struct tags and reports failures as domain.ErrValidation
func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return xerrors.Errorf("%v: %w", err, domain.ErrValidation)
	}
	return nil
}
