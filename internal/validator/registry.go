package validator

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Schema keys.
const (
	SchemaProposalSpecs   = "proposal_specs"
	SchemaClientImportRow = "client_import_row"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Registry maps schema keys to compiled JSON schemas.
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*jsonschema.Schema)}
}

// NewDefaultRegistry returns a registry holding every embedded schema, keyed by file name.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schemas: %w", err)
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", e.Name(), err)
		}
		if err := r.Register(strings.TrimSuffix(e.Name(), ".json"), raw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register compiles and adds a schema under key.
func (r *Registry) Register(key string, raw []byte) error {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return fmt.Errorf("compile schema %s: %w", key, err)
	}
	r.schemas[key] = rs
	return nil
}

// Get returns the schema for a key, or nil if not found.
func (r *Registry) Get(key string) *jsonschema.Schema {
	return r.schemas[key]
}

// Keys returns the registered schema keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
