package port

import (
	"context"
	"encoding/json"
)

// SpecsValidator checks free-form proposal specs before they are stored.
type SpecsValidator interface {
	ValidateSpecs(ctx context.Context, specs json.RawMessage) error
}
