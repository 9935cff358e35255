package service

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// EmailValidationResult reports whether an address is acceptable and, if not, why.
type EmailValidationResult struct {
	IsValid bool
	Message string
}

// EmailValidator checks submitted email addresses.
type EmailValidator interface {
	Validate(email string) EmailValidationResult
}

// SyntaxEmailValidator applies RFC 5322 syntax rules via go-playground/validator.
type SyntaxEmailValidator struct {
	validate *validator.Validate
}

// NewSyntaxEmailValidator 构造 SyntaxEmailValidator。
func NewSyntaxEmailValidator() *SyntaxEmailValidator {
	return &SyntaxEmailValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements EmailValidator.
func (v *SyntaxEmailValidator) Validate(email string) EmailValidationResult {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return EmailValidationResult{Message: "An email address is required."}
	}
	if err := v.validate.Var(trimmed, "email,max=254"); err != nil {
		return EmailValidationResult{Message: "The email address '" + trimmed + "' is not valid."}
	}
	return EmailValidationResult{IsValid: true}
}
