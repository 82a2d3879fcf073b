package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"fieldpilot/internal/config"
	"fieldpilot/internal/drafter"
	"fieldpilot/internal/port"
)

const defaultBaseURL = "http://localhost:11434"

// Drafter implements port.Drafter against a local Ollama server.
type Drafter struct {
	api   *api.Client
	model string
}

// NewDrafter creates an Ollama drafter. The endpoint is the server base URL.
func NewDrafter(cfg *config.DrafterProviderConfig) (*Drafter, error) {
	return NewDrafterWithClient(cfg, &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	})
}

// NewDrafterWithClient creates a drafter using the given HTTP client (for testing).
func NewDrafterWithClient(cfg *config.DrafterProviderConfig, httpClient *http.Client) (*Drafter, error) {
	base := cfg.Endpoint
	if base == "" {
		base = defaultBaseURL
	}
	u, err := url.ParseRequestURI(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "llama3.2"
	}
	return &Drafter{api: api.NewClient(u, httpClient), model: model}, nil
}

func (d *Drafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	prompt, err := drafter.RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	stream := false
	genReq := &api.GenerateRequest{
		Model:  d.model,
		System: prompt.System,
		Prompt: prompt.User,
		Stream: &stream,
	}

	var sb strings.Builder
	err = d.api.Generate(ctx, genReq, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, drafter.Malformed("empty ollama response")
	}
	return &port.DraftResult{Markdown: text, Provider: "ollama", Model: d.model}, nil
}

func mapError(err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		statusErr := &drafter.StatusError{Provider: "ollama", StatusCode: se.StatusCode, Body: se.ErrorMessage}
		if se.StatusCode == http.StatusTooManyRequests {
			return drafter.NewRateLimitError("ollama", statusErr, 0)
		}
		return statusErr
	}
	return fmt.Errorf("calling ollama API: %w", err)
}
