package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated  = errors.New("user not authenticated")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCampaignNotOpen   = errors.New("campaign not open")
	ErrDuplicateCampaign = errors.New("owner already has an open campaign")
	ErrDuplicateLocation = errors.New("location already claimed by an open campaign")
	ErrNonPositiveAmount = errors.New("donation amount must be positive")
)

// Field error codes, part of the public API surface.
const (
	CodeTitleInvalidLength    = "TITLE_INVALID_LENGTH"
	CodeDescriptionTooLong    = "DESCRIPTION_INVALID_LENGTH"
	CodeLocationInvalidFormat = "LOCATION_INVALID_STRING_FORMAT"
	CodeLocationTooLong       = "LOCATION_INVALID_LENGTH"
	CodeTargetInvalidValue    = "FUNDING_TARGET_INVALID_VALUE"
	CodeDurationInvalid       = "EXPIRATION_INVALID_LENGTH"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field string
	Code  string
	Min   int64
	Max   int64
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

// ValidationError aggregates every field violation found in one pass, so a
// caller sees all problems at once instead of the first rejection.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		codes[i] = f.Error()
	}
	return "invalid input: " + strings.Join(codes, "; ")
}

// CollectFieldErrors combines the outcomes of independent field checks.
// Nil checks are skipped; a nil return means every field passed.
func CollectFieldErrors(checks ...*FieldError) error {
	var fields []FieldError
	for _, c := range checks {
		if c != nil {
			fields = append(fields, *c)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
