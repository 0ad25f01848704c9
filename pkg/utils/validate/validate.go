// Package validate collects request field errors into a single
// VALIDATION_ERROR response.
package validate

import (
	"strings"

	"codefix/pkg/errors"
)

// Common messages shared by the request validators.
const (
	MsgCodeNonEmpty        = "Code is required and must be a non-empty string"
	MsgCodeRequired        = "Code is required and must be a string"
	MsgLanguageRequired    = "Language is required and must be a string"
	MsgDescriptionNonEmpty = "Description is required and must be a non-empty string"
)

// Validator accumulates field errors; the zero value is ready to use.
type Validator struct {
	fields []errors.FieldError
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.fields = append(v.fields, errors.FieldError{Field: field, Message: message})
	}
	return v
}

// NonBlank requires value to contain something other than whitespace.
func (v *Validator) NonBlank(field, value, message string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, message)
}

// Present requires a non-nil value. Blank strings are accepted.
func (v *Validator) Present(field string, value *string, message string) *Validator {
	return v.Check(value != nil, field, message)
}

// Required requires a non-empty value.
func (v *Validator) Required(field, value, message string) *Validator {
	return v.Check(value != "", field, message)
}

// Err returns nil when every check passed.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return errors.ValidationErrors(v.fields)
}
