package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"socialnet/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the account tags registered:
// "username", "password" and "optional_email".
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		mustRegister(v, "optional_email", func(fl validator.FieldLevel) bool {
			return ValidateEmail(fl.Field().String()) == nil
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and converts the first failure into a ValidationError.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": this field is required"
	case "max":
		return fmt.Sprintf("%s: ensure this field has no more than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: ensure this field has at least %s characters", field, fe.Param())
	case "username":
		return field + ": " + ValidateUsername(fe.Value().(string)).Error()
	case "password":
		return field + ": " + ValidatePassword(fe.Value().(string)).Error()
	case "optional_email":
		return field + ": " + ValidateEmail(fe.Value().(string)).Error()
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s: must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %q validation", field, fe.Tag())
	}
}
