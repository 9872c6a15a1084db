package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillzlab/enrollment-service/internal/models"
)

// ValidationError represents a single field failure surfaced to the caller
// before any network round-trip is made.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground/validator with the workflow's custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates any struct by its validate tags.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	// payment_method: member of the fixed enumeration
	_ = v.validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return models.IsValidPaymentMethod(models.PaymentMethod(fl.Field().String()))
	})

	// coupon_code: non-empty after normalization
	_ = v.validate.RegisterValidation("coupon_code", func(fl validator.FieldLevel) bool {
		return models.NormalizeCouponCode(fl.Field().String()) != ""
	})
}

// ToValidationErrors converts go-playground errors to the local slice type.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "payment_method":
		return "must be one of bKash, Nagad, Bank Transfer"
	case "coupon_code":
		return "must not be blank"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
