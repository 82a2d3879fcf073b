package drafter

import (
	"context"
	"fmt"

	"fieldpilot/internal/config"
	"fieldpilot/internal/port"
)

// ProviderFactory is a function that creates a Drafter from a provider config.
type ProviderFactory func(cfg *config.DrafterProviderConfig) (port.Drafter, error)

// registry of provider factories, populated explicitly via RegisterProvider at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a drafter provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewDrafter creates a Drafter from a provider config using the registered factory.
func NewDrafter(cfg *config.DrafterProviderConfig) (port.Drafter, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown drafter provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// BuildChain builds the configured providers, wraps each in retry and chains
// them in fallback order. A single provider is returned without the fallback wrapper.
func BuildChain(cfg *config.DrafterConfig) (port.Drafter, error) {
	tiers := cfg.Providers()
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no drafter providers configured")
	}

	drafters := make([]port.Drafter, 0, len(tiers))
	names := make([]string, 0, len(tiers))
	for _, p := range tiers {
		d, err := NewDrafter(p)
		if err != nil {
			return nil, err
		}
		drafters = append(drafters, NewRetryDrafter(d, p.Provider, p.MaxRetries, p.Timeout(), p.Backoff()))
		names = append(names, p.Provider)
	}

	if len(drafters) == 1 {
		return drafters[0], nil
	}
	return NewFallbackDrafter(drafters, names), nil
}

// Unavailable is the drafter used when no provider chain could be built.
// Every call fails with the build error.
type Unavailable struct {
	Err error
}

func (u Unavailable) Draft(context.Context, port.DraftRequest) (*port.DraftResult, error) {
	return nil, fmt.Errorf("no drafter configured: %w", u.Err)
}
