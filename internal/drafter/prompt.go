package drafter

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt is a rendered system/user prompt pair for chat-style providers.
type Prompt struct {
	System string
	User   string
}

type promptSource struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type promptTemplates struct {
	system *template.Template
	user   *template.Template
}

// PromptCatalog holds the parsed prompt templates per draft type.
type PromptCatalog struct {
	templates map[domain.DraftType]promptTemplates
}

// LoadPrompts parses a YAML prompt catalog keyed by draft type.
func LoadPrompts(data []byte) (*PromptCatalog, error) {
	var raw map[string]promptSource
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding prompt catalog: %w", err)
	}

	c := &PromptCatalog{templates: make(map[domain.DraftType]promptTemplates, len(raw))}
	for name, src := range raw {
		sys, err := template.New(name + ".system").Parse(src.System)
		if err != nil {
			return nil, fmt.Errorf("parsing %s system prompt: %w", name, err)
		}
		usr, err := template.New(name + ".user").Parse(src.User)
		if err != nil {
			return nil, fmt.Errorf("parsing %s user prompt: %w", name, err)
		}
		c.templates[domain.DraftType(name)] = promptTemplates{system: sys, user: usr}
	}
	return c, nil
}

// Render executes the templates for the request's draft type against its payload.
func (c *PromptCatalog) Render(req port.DraftRequest) (Prompt, error) {
	t, ok := c.templates[req.Type]
	if !ok {
		return Prompt{}, fmt.Errorf("no prompt for draft type %q", req.Type)
	}
	data := req.Payload
	if data == nil {
		data = map[string]interface{}{}
	}

	var sys, usr bytes.Buffer
	if err := t.system.Execute(&sys, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering %s system prompt: %w", req.Type, err)
	}
	if err := t.user.Execute(&usr, data); err != nil {
		return Prompt{}, fmt.Errorf("rendering %s user prompt: %w", req.Type, err)
	}
	return Prompt{
		System: strings.TrimSpace(sys.String()),
		User:   strings.TrimSpace(usr.String()),
	}, nil
}

var defaultCatalog = mustLoadPrompts(defaultPromptsYAML)

func mustLoadPrompts(data []byte) *PromptCatalog {
	c, err := LoadPrompts(data)
	if err != nil {
		panic(err)
	}
	return c
}

// RenderPrompt renders a request with the built-in prompt catalog.
func RenderPrompt(req port.DraftRequest) (Prompt, error) {
	return defaultCatalog.Render(req)
}
