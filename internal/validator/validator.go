package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fieldpilot/internal/domain"
)

// FieldError is a single schema violation.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in a document. It unwraps to
// domain.ErrInvalidSpecs so callers can map it like any other input error.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Message))
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidSpecs
}

// Validator checks JSON documents against registered schemas.
type Validator struct {
	registry *Registry
}

// New creates a Validator over a schema registry.
func New(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks data against the schema registered under key.
func (v *Validator) Validate(ctx context.Context, key string, data []byte) error {
	rs := v.registry.Get(key)
	if rs == nil {
		return fmt.Errorf("validator.Validate: unknown schema %q", key)
	}
	if !json.Valid(data) {
		return &ValidationError{Schema: key, Fields: []FieldError{{Path: "/", Message: "not valid JSON"}}}
	}

	keyErrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("validator.Validate: %w", err)
	}
	if len(keyErrs) == 0 {
		return nil
	}

	fields := make([]FieldError, 0, len(keyErrs))
	for _, ke := range keyErrs {
		p := ke.PropertyPath
		if p == "" {
			p = "/"
		}
		fields = append(fields, FieldError{Path: p, Message: ke.Message})
	}
	return &ValidationError{Schema: key, Fields: fields}
}

// ValidateSpecs checks a proposal specs document. Empty input is accepted.
func (v *Validator) ValidateSpecs(ctx context.Context, specs json.RawMessage) error {
	if len(specs) == 0 {
		return nil
	}
	return v.Validate(ctx, SchemaProposalSpecs, specs)
}
