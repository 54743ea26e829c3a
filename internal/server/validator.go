package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/mberliner/reflexio/internal/apperr"
)

// requestValidator plugs validator/v10 into echo's c.Validate.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (r *requestValidator) Validate(i any) error {
	if err := r.v.Struct(i); err != nil {
		return apperr.NewValidationWrap("invalid request", err)
	}
	return nil
}
