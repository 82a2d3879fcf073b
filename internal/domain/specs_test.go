package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
)

func TestAppendSpecsNote(t *testing.T) {
	out, err := domain.AppendSpecsNote(nil, "Approved: ok")
	require.NoError(t, err)
	assert.Equal(t, "Approved: ok", domain.SpecsNotes(out))

	out, err = domain.AppendSpecsNote(json.RawMessage(`{"notes":"call first","area":12}`), "Rejected: too pricey")
	require.NoError(t, err)
	assert.Equal(t, "call first\nRejected: too pricey", domain.SpecsNotes(out))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, float64(12), m["area"], "freeform keys are preserved")
}

func TestMergeSpecs(t *testing.T) {
	scope := "rewire panel"
	out, err := domain.MergeSpecs(json.RawMessage(`{"notes":"n"}`), &scope, nil)
	require.NoError(t, err)
	assert.Equal(t, "rewire panel", domain.SpecsScope(out))
	assert.Equal(t, "n", domain.SpecsNotes(out))
}

func TestDecodeSpecs_Invalid(t *testing.T) {
	_, err := domain.DecodeSpecs(json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, domain.ErrInvalidSpecs)
}
