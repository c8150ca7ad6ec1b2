package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"quizhub/backend/apperr"
)

var validate = validator.New()

// ValidateStruct checks a request payload against its validate tags
// and returns a ValidationFailed error carrying per-field messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fieldErrors[fe.Field()] = messageForTag(fe)
	}

	return apperr.WithDetails(apperr.ValidationFailed, "Validation failed", fieldErrors)
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
