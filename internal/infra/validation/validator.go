package validation

import (
	"context"

	"github.com/go-playground/validator/v10"

	"rentora/internal/app/middleware"
)

// Adapter exposes go-playground struct validation through the application's
// validator port.
type Adapter struct {
	validate *validator.Validate
}

func New() *Adapter {
	return &Adapter{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (a *Adapter) Validate(ctx context.Context, message any) error {
	if message == nil {
		return nil
	}
	return a.validate.StructCtx(ctx, message)
}

// IsInvalid reports whether err stems from struct validation.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(validator.ValidationErrors)
	return ok
}

var _ middleware.Validator = (*Adapter)(nil)
