package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   *validator.Validate
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

func init() {
	validate = validator.New()
	// Report JSON field names so messages match what the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func FormatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			field := fieldError.Field()
			switch fieldError.Tag() {
			case "required":
				errs[field] = fmt.Sprintf("%s is required", field)
			case "email":
				errs[field] = "Invalid email format"
			case "min":
				errs[field] = fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
			case "max":
				errs[field] = fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
			case "len":
				errs[field] = fmt.Sprintf("%s must be exactly %s characters", field, fieldError.Param())
			case "oneof":
				errs[field] = fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
			case "numeric":
				errs[field] = fmt.Sprintf("%s must contain digits only", field)
			case "phone":
				errs[field] = fmt.Sprintf("%s must be a valid phone number", field)
			case "gt":
				errs[field] = fmt.Sprintf("%s must be greater than %s", field, fieldError.Param())
			default:
				errs[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errs
}
