package port

import (
	"context"

	"fieldpilot/internal/domain"
)

// DraftRequest is the structured payload sent to a text generator.
type DraftRequest struct {
	Type    domain.DraftType       `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// DraftResult is the generated markdown and where it came from.
type DraftResult struct {
	Markdown string
	Provider string
	Model    string
}

// Drafter abstracts AI text generation for proposals and incident reports.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (*DraftResult, error)
}
