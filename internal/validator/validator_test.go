package validator_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/validator"
)

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	reg, err := validator.NewDefaultRegistry()
	require.NoError(t, err)
	return validator.New(reg)
}

func TestDefaultRegistry_LoadsEmbeddedSchemas(t *testing.T) {
	reg, err := validator.NewDefaultRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{validator.SchemaClientImportRow, validator.SchemaProposalSpecs}, reg.Keys())
}

func TestValidateSpecs(t *testing.T) {
	v := newValidator(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		specs   string
		wantErr bool
	}{
		{"empty object", `{}`, false},
		{"scope and notes", `{"scope":"rewire panel","notes":"Approved: ok"}`, false},
		{"freeform fields kept", `{"scope":"x","siteAccess":"gate code 1234"}`, false},
		{"materials", `{"materials":[{"name":"breaker","quantity":2,"unitCost":35.5}]}`, false},
		{"scope not a string", `{"scope":42}`, true},
		{"negative labour", `{"laborHours":-1}`, true},
		{"material without name", `{"materials":[{"quantity":1}]}`, true},
		{"array instead of object", `[1,2]`, true},
		{"not json", `{scope:`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSpecs(ctx, json.RawMessage(tt.specs))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidSpecs)
				var ve *validator.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.NotEmpty(t, ve.Fields)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSpecs_NilIsAccepted(t *testing.T) {
	assert.NoError(t, newValidator(t).ValidateSpecs(context.Background(), nil))
}

func TestValidate_ClientImportRow(t *testing.T) {
	v := newValidator(t)
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, validator.SchemaClientImportRow, []byte(`{"companyName":"Acme"}`)))
	assert.Error(t, v.Validate(ctx, validator.SchemaClientImportRow, []byte(`{"companyName":""}`)))
	assert.Error(t, v.Validate(ctx, validator.SchemaClientImportRow, []byte(`{"contactName":"Jane"}`)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := newValidator(t).Validate(context.Background(), "nope", []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidSpecs)
}
