package ollama_test

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
	"fieldpilot/internal/drafter/ollama"
	"fieldpilot/internal/port"
)

func newTestDrafter(t *testing.T, server *httptest.Server) *ollama.Drafter {
	t.Helper()
	d, err := ollama.NewDrafterWithClient(&config.DrafterProviderConfig{
		Provider:     "ollama",
		Endpoint:     server.URL,
		DefaultModel: "llama3.2",
	}, server.Client())
	require.NoError(t, err)
	return d
}

func TestOllamaDrafter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Contains(t, body["prompt"], "Gutter cleaning")
		assert.Contains(t, body["system"], "estimator")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": "# Gutter cleaning", "done": true})
	}))
	defer server.Close()

	out, err := newTestDrafter(t, server).Draft(context.Background(), port.DraftRequest{
		Type:    domain.DraftTypeProposal,
		Payload: map[string]interface{}{"job_title": "Gutter cleaning"},
	})

	require.NoError(t, err)
	assert.Equal(t, "# Gutter cleaning", out.Markdown)
	assert.Equal(t, "ollama", out.Provider)
}

func TestOllamaDrafter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	}))
	defer server.Close()

	_, err := newTestDrafter(t, server).Draft(context.Background(), port.DraftRequest{Type: domain.DraftTypeProposal})

	require.Error(t, err)
	assert.True(t, drafter.IsRetryable(err))
}

func TestNewDrafter_InvalidBaseURL(t *testing.T) {
	_, err := ollama.NewDrafter(&config.DrafterProviderConfig{Provider: "ollama", Endpoint: "::not a url"})
	assert.Error(t, err)
}
