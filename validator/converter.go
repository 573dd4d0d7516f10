// Package validator converts ozzo-validation failures into layered errors
package validator

import (
	"errors"
	"sort"

	"github.com/KOMKZ/go-yogan-chat/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validatable is implemented by request DTOs
type Validatable interface {
	Validate() error
}

// ValidateRequest runs req.Validate and maps validation.Errors to errcode.ErrValidation
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs)
	}
	return err
}

// ConvertValidationError puts per-field messages under data.fields.
// The message names the first failing field in alphabetical order.
func ConvertValidationError(validationErrs validation.Errors) error {
	fields := make(map[string]string, len(validationErrs))
	names := make([]string, 0, len(validationErrs))
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
			names = append(names, field)
		}
	}

	err := errcode.ErrValidation.WithData("fields", fields)
	if len(names) > 0 {
		sort.Strings(names)
		err = err.WithMsgf("%s: %s", names[0], fields[names[0]])
	}
	return err
}
