package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fieldpilot/internal/config"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Drafter implements port.Drafter using Google's Gemini API.
type Drafter struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewDrafter creates a Gemini-based drafter.
func NewDrafter(cfg *config.DrafterProviderConfig) *Drafter {
	return NewDrafterWithEndpoint(cfg, cfg.Endpoint)
}

// NewDrafterWithEndpoint creates a drafter pointing at a custom API endpoint (for testing).
func NewDrafterWithEndpoint(cfg *config.DrafterProviderConfig, endpoint string) *Drafter {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Drafter{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 2 * cfg.Timeout()},
	}
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	prompt, err := drafter.RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": prompt.System}},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": []map[string]interface{}{{"text": prompt.User}},
			},
		},
	}
	headers := map[string]string{"x-goog-api-key": d.apiKey}

	body, err := drafter.PostJSON(ctx, d.client, "gemini", d.endpoint, headers, reqBody)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, drafter.Malformed("unmarshaling response: %v", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, drafter.Malformed("empty response from API: no candidates")
	}
	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, drafter.Malformed("output truncated (finishReason: MAX_TOKENS)")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, drafter.Malformed("empty candidate content")
	}

	return &port.DraftResult{Markdown: text, Provider: "gemini", Model: d.model}, nil
}
