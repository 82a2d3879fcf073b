package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fieldpilot/internal/config"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Drafter implements port.Drafter using the OpenAI Chat Completions API.
type Drafter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewDrafter creates an OpenAI-based drafter. A custom endpoint allows any
// compatible server.
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
		model = "gpt-4o-mini"
	}
	return &Drafter{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 2 * cfg.Timeout()},
	}
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	prompt, err := drafter.RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"model": d.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": prompt.User},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + d.apiKey}

	body, err := drafter.PostJSON(ctx, d.client, "openai", d.endpoint, headers, reqBody)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, drafter.Malformed("unmarshaling response: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, drafter.Malformed("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, drafter.Malformed("output truncated (finish_reason: length)")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, drafter.Malformed("empty message content")
	}

	return &port.DraftResult{Markdown: text, Provider: "openai", Model: d.model}, nil
}
