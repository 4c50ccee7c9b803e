package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator wraps validator/v10 with the date and clock tags used by the
// booking forms.  Field names in errors follow the json tags.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	// clock accepts HH:MM and HH:MM:SS.
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		if _, err := time.Parse("15:04:05", value); err == nil {
			return true
		}
		_, err := time.Parse("15:04", value)
		return err == nil
	})

	return &Validator{v: v}
}

// Struct validates s and converts failures into a *ValidationError.
func (v *Validator) Struct(s interface{}) error {
	return convert(v.v.Struct(s), "")
}

// Var validates a single value reported under field.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	return convert(v.v.Var(value, tag), field)
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		name := field
		if name == "" {
			name = fe.Field()
		}
		if fe.Tag() == "required" {
			out.Fields[name] = "is required"
		} else {
			out.Fields[name] = "is invalid"
		}
	}
	return out
}
