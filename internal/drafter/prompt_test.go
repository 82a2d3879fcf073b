package drafter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

func TestRenderPrompt_Proposal(t *testing.T) {
	p, err := drafter.RenderPrompt(port.DraftRequest{
		Type: domain.DraftTypeProposal,
		Payload: map[string]interface{}{
			"business_name":  "Volt Bros",
			"job_title":      "Panel upgrade",
			"client_company": "Acme",
			"client_contact": "Jane",
			"scope":          "rewire panel",
			"price_estimate": 5000,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, p.System, "Volt Bros")
	assert.Contains(t, p.User, "Job: Panel upgrade")
	assert.Contains(t, p.User, "Client: Acme (attn. Jane)")
	assert.Contains(t, p.User, "Requested scope: rewire panel")
	assert.Contains(t, p.User, "Price estimate: 5000")
	assert.NotContains(t, p.User, "Notes:")
	assert.NotContains(t, p.User, "<no value>")
}

func TestRenderPrompt_ProposalWithoutBusinessName(t *testing.T) {
	p, err := drafter.RenderPrompt(port.DraftRequest{
		Type:    domain.DraftTypeProposal,
		Payload: map[string]interface{}{"job_title": "Leak repair"},
	})
	require.NoError(t, err)
	assert.Contains(t, p.System, "a field-service business")
}

func TestRenderPrompt_Incident(t *testing.T) {
	p, err := drafter.RenderPrompt(port.DraftRequest{
		Type: domain.DraftTypeIncident,
		Payload: map[string]interface{}{
			"job_title":           "Panel upgrade",
			"severity":            "high",
			"description":         "Sparks from breaker",
			"photo_count":         2,
			"voice_note_recorded": true,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, p.User, "Severity: high")
	assert.Contains(t, p.User, "Description: Sparks from breaker")
	assert.Contains(t, p.User, "Photos attached: 2")
	assert.Contains(t, p.User, "voice note was recorded")
}

func TestRenderPrompt_UnknownType(t *testing.T) {
	_, err := drafter.RenderPrompt(port.DraftRequest{Type: domain.DraftType("invoice")})
	assert.Error(t, err)
}

func TestLoadPrompts_InvalidTemplate(t *testing.T) {
	_, err := drafter.LoadPrompts([]byte("proposal:\n  system: \"{{ .broken \"\n  user: ok\n"))
	assert.Error(t, err)
}

func TestLoadPrompts_Custom(t *testing.T) {
	c, err := drafter.LoadPrompts([]byte("incident:\n  system: sys\n  user: \"{{ .description }}\"\n"))
	require.NoError(t, err)

	p, err := c.Render(port.DraftRequest{Type: domain.DraftTypeIncident, Payload: map[string]interface{}{"description": "flooded basement"}})
	require.NoError(t, err)
	assert.Equal(t, "sys", p.System)
	assert.Equal(t, "flooded basement", p.User)
}
