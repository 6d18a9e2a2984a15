package validator

import (
	"errors"
	"reflect"
	"strings"

	"staybook/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Check validates v and returns a VALIDATION_ERROR carrying the failed
// fields, or nil.
func Check(v interface{}) error {
	fields := Validate(v)
	if fields == nil {
		return nil
	}
	return apperr.Validation("VALIDATION_ERROR", "Invalid request").WithDetails(fields)
}
