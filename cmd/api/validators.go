package api

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// nowFunc is swapped in tests
var nowFunc = time.Now

// RegisterValidators adds the custom binding tags used by request bodies
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("future", validateFuture)
}

// validateFuture accepts only instants strictly after now
func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(nowFunc())
}
