package endpoint

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

const providerName = "endpoint"

// Drafter implements port.Drafter against a generation endpoint that accepts
// {type, payload} and returns {markdown} or {text}.
type Drafter struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

// NewDrafter creates an endpoint drafter. The endpoint URL is required.
func NewDrafter(cfg *config.DrafterProviderConfig) (*Drafter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint drafter: endpoint URL is required")
	}
	return &Drafter{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		model:    cfg.DefaultModel,
		client:   &http.Client{},
	}, nil
}

type response struct {
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	headers := map[string]string{}
	if d.apiKey != "" {
		headers["Authorization"] = "Bearer " + d.apiKey
	}

	body, err := drafter.PostJSON(ctx, d.client, providerName, d.endpoint, headers, req)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, drafter.Malformed("decoding response: %v", err)
	}
	text := resp.Markdown
	if text == "" {
		text = resp.Text
	}
	if strings.TrimSpace(text) == "" {
		return nil, drafter.Malformed("empty generated text")
	}

	return &port.DraftResult{Markdown: text, Provider: providerName, Model: d.model}, nil
}
