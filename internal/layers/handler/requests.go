package handler

import (
	"strings"

	dErrors "mapview/pkg/domain-errors"
)

// SelectFieldRequest is the HTTP request body for POST /sessions/{sessionID}/field.
type SelectFieldRequest struct {
	Field string `json:"field"`
}

// Normalize trims the field name.
func (r *SelectFieldRequest) Normalize() {
	if r == nil {
		return
	}
	r.Field = strings.TrimSpace(r.Field)
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SelectFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Field == "" {
		return dErrors.New(dErrors.CodeValidation, "field is required")
	}
	if len(r.Field) > 128 {
		return dErrors.New(dErrors.CodeValidation, "field must be at most 128 characters")
	}
	return nil
}
