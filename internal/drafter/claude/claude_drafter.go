package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fieldpilot/internal/config"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Drafter implements port.Drafter using the Anthropic Messages API.
type Drafter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewDrafter creates a Claude-based drafter from a provider config.
func NewDrafter(cfg *config.DrafterProviderConfig) *Drafter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return NewDrafterWithEndpoint(cfg, endpoint)
}

// NewDrafterWithEndpoint creates a drafter pointing at a custom API endpoint (for testing).
func NewDrafterWithEndpoint(cfg *config.DrafterProviderConfig, endpoint string) *Drafter {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &Drafter{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 2 * cfg.Timeout()},
	}
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	prompt, err := drafter.RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"model":      d.model,
		"max_tokens": 4096,
		"system":     prompt.System,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt.User},
		},
	}
	headers := map[string]string{
		"x-api-key":         d.apiKey,
		"anthropic-version": apiVersion,
	}

	body, err := drafter.PostJSON(ctx, d.client, "claude", d.endpoint, headers, reqBody)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, drafter.Malformed("unmarshaling response: %v", err)
	}
	if resp.StopReason == "max_tokens" {
		return nil, drafter.Malformed("output truncated (stop_reason: max_tokens)")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, drafter.Malformed("empty response from API")
	}

	return &port.DraftResult{Markdown: text, Provider: "claude", Model: d.model}, nil
}
