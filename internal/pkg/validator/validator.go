package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Pesokrava/perfume_catalog/internal/domain"
)

// Shared validator instance with the catalog's custom tags registered
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	mustRegister("concentration", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.Concentrations, fl.Field().String())
	})
	mustRegister("audience", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.Audiences, fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// Struct validates s and returns the names of the fields that failed, or nil
func Struct(s interface{}) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// Validate returns nil when s is valid, otherwise an error wrapping
// domain.ErrInvalidInput that names the failing fields
func Validate(s interface{}) error {
	fields := Struct(s)
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}
