package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpilot/internal/config"
	"fieldpilot/internal/domain"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/drafter/gemini"
	"fieldpilot/internal/port"
)

func newTestDrafter(serverURL string) *gemini.Drafter {
	return gemini.NewDrafterWithEndpoint(&config.DrafterProviderConfig{
		Provider: "gemini",
		APIKey:   "g-key",
	}, serverURL)
}

func TestGeminiDrafter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Contains(t, reqBody, "systemInstruction")
		assert.Contains(t, reqBody, "contents")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"## Overview"},{"text":"\nDetails"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	out, err := newTestDrafter(server.URL).Draft(context.Background(), port.DraftRequest{
		Type:    domain.DraftTypeProposal,
		Payload: map[string]interface{}{"job_title": "Roof inspection"},
	})

	require.NoError(t, err)
	assert.Equal(t, "## Overview\nDetails", out.Markdown)
	assert.Equal(t, "gemini-2.0-flash", out.Model)
}

func TestGeminiDrafter_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"cut"}]},"finishReason":"MAX_TOKENS"}]}`))
	}))
	defer server.Close()

	_, err := newTestDrafter(server.URL).Draft(context.Background(), port.DraftRequest{Type: domain.DraftTypeProposal})
	assert.ErrorIs(t, err, drafter.ErrMalformedResponse)
}

func TestGeminiDrafter_DefaultEndpointIncludesModel(t *testing.T) {
	d := gemini.NewDrafter(&config.DrafterProviderConfig{Provider: "gemini", DefaultModel: "gemini-1.5-pro"})
	assert.NotNil(t, d)
}
