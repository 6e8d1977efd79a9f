package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	slotDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slotTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		return slotDatePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return slotTimePattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "eth_addr":
				errors[field] = field + " must be a valid wallet address"
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "url":
				errors[field] = field + " must be a valid URL"
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "slotdate":
				errors[field] = field + " must use the YYYY-MM-DD format"
			case "slottime":
				errors[field] = field + " must use the HH:MM format"
			case "dive":
				errors[field] = field + " contains an invalid entry"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
