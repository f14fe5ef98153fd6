package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	bloodGroupPattern = regexp.MustCompile(`^(A|B|AB|O)[+-]$`)
	cnicPattern       = regexp.MustCompile(`^\d{5}-\d{7}-\d{1}$`)
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return IsBloodGroup(fl.Field().String())
	})
	_ = v.RegisterValidation("cnic", func(fl validator.FieldLevel) bool {
		return IsCNIC(fl.Field().String())
	})
	return &CustomValidator{
		validator: v,
	}
}

// IsBloodGroup accepts A, B, AB and O with a trailing + or -.
func IsBloodGroup(s string) bool {
	return bloodGroupPattern.MatchString(s)
}

// IsCNIC accepts the 13-digit national identity number in 5-7-1 form.
func IsCNIC(s string) bool {
	return cnicPattern.MatchString(s)
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
			case "required_without":
				errors[field] = field + " is required when " + e.Param() + " is empty"
			case "excluded_with":
				errors[field] = field + " cannot be combined with " + e.Param()
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "len":
				errors[field] = field + " must be exactly " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "bloodgroup":
				errors[field] = field + " must be a blood group like A+, O- or AB+"
			case "cnic":
				errors[field] = field + " must match 12345-1234567-1"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
