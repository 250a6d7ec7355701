package validator

import (
	"reflect"
	"strings"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// NewValidator builds the shared validator. Field errors are reported with
// their json names so clients can map them back to the request body.
func NewValidator() *validator.Validate {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func GetValidator() *validator.Validate {
	return validate
}

func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, fieldErr := range validateErrs {
				details[fieldErr.Namespace()] = fieldErr.Tag()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
