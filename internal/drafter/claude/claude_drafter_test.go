package claude_test

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
	"fieldpilot/internal/drafter/claude"
	"fieldpilot/internal/port"
)

func newTestDrafter(serverURL string) *claude.Drafter {
	cfg := &config.DrafterProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewDrafterWithEndpoint(cfg, serverURL)
}

func incidentRequest() port.DraftRequest {
	return port.DraftRequest{
		Type: domain.DraftTypeIncident,
		Payload: map[string]interface{}{
			"job_title":   "Panel upgrade",
			"severity":    "critical",
			"description": "Exposed live wire",
		},
	}
}

func TestClaudeDrafter_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Contains(t, reqBody["system"], "incident reports")

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])
		assert.Contains(t, msg["content"], "Exposed live wire")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "## Summary\n"},
				{"type": "text", "text": "Live wire exposed."},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestDrafter(server.URL).Draft(context.Background(), incidentRequest())

	require.NoError(t, err)
	assert.Equal(t, "## Summary\nLive wire exposed.", out.Markdown)
	assert.Equal(t, "claude", out.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", out.Model)
}

func TestClaudeDrafter_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"partial"}],"stop_reason":"max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestDrafter(server.URL).Draft(context.Background(), incidentRequest())
	assert.ErrorIs(t, err, drafter.ErrMalformedResponse)
}

func TestClaudeDrafter_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestDrafter(server.URL).Draft(context.Background(), incidentRequest())

	var rl *drafter.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "claude", rl.Provider)
}
