package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	phoneRegex   = regexp.MustCompile(`^(\+84|0)[0-9]{9,10}$`)
	registerOnce sync.Once
)

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
				return IsValidPhone(fl.Field().String())
			})
		}
	})
}

// IsValidPhone accepts Vietnamese mobile and landline numbers
func IsValidPhone(phone string) bool {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	return phoneRegex.MatchString(phone)
}

// FormatValidationErrors converts binding errors into field messages
func FormatValidationErrors(err error) FieldValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldValidationErrors{{Field: "body", Message: err.Error()}}
	}

	out := make(FieldValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldValidationError{
			Field:   toSnakeCase(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "dive":
		return "contains an invalid value"
	}
	return "is invalid"
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BindJSON binds the body and writes a 400 with field errors on failure
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		LogDebug("Invalid request body on %s: %v", c.Request.URL.Path, err)
		BadRequest(c, "Invalid request body", FormatValidationErrors(err))
		return false
	}
	return true
}
