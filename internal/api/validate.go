package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/httperr"
)

var validate = newValidator()

// newValidator builds the request validator, reporting failures under the
// JSON field names clients actually sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError carries per-field failures to the error writer.
type validationError struct {
	details []fieldError
}

func (e *validationError) Error() string { return "Validation failed" }

// decodeValid decodes the JSON body into dst and runs struct validation.
func decodeValid(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return httperr.Invalid("Invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return httperr.Invalid("Validation failed")
		}
		details := make([]fieldError, 0, len(verrs))
		for _, ferr := range verrs {
			details = append(details, fieldError{
				Field:   ferr.Field(),
				Message: fieldMessage(ferr),
			})
		}
		return &validationError{details: details}
	}
	return nil
}

func fieldMessage(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ferr.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", ferr.Field(), ferr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", ferr.Field(), ferr.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", ferr.Field(), ferr.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", ferr.Field(), ferr.Param())
	case "hexcolor":
		return "Invalid color format"
	default:
		return fmt.Sprintf("%s is invalid", ferr.Field())
	}
}
