package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	specsKeyScope = "scope"
	specsKeyNotes = "notes"
)

// DecodeSpecs unmarshals proposal specs into a map. Empty input yields an empty map.
func DecodeSpecs(raw json.RawMessage) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	if len(raw) == 0 || string(raw) == "null" {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpecs, err)
	}
	return m, nil
}

func specsString(raw json.RawMessage, key string) string {
	m, err := DecodeSpecs(raw)
	if err != nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// SpecsScope returns the trimmed scope entry of proposal specs.
func SpecsScope(raw json.RawMessage) string {
	return strings.TrimSpace(specsString(raw, specsKeyScope))
}

// SpecsNotes returns the notes entry of proposal specs.
func SpecsNotes(raw json.RawMessage) string {
	return specsString(raw, specsKeyNotes)
}

// MergeSpecs overlays the scope and notes values that are non-nil onto raw.
func MergeSpecs(raw json.RawMessage, scope, notes *string) (json.RawMessage, error) {
	m, err := DecodeSpecs(raw)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		m[specsKeyScope] = *scope
	}
	if notes != nil {
		m[specsKeyNotes] = *notes
	}
	return json.Marshal(m)
}

// AppendSpecsNote appends line to the notes entry, newline separated, keeping prior notes.
func AppendSpecsNote(raw json.RawMessage, line string) (json.RawMessage, error) {
	m, err := DecodeSpecs(raw)
	if err != nil {
		return nil, err
	}
	existing, _ := m[specsKeyNotes].(string)
	if existing == "" {
		m[specsKeyNotes] = line
	} else {
		m[specsKeyNotes] = existing + "\n" + line
	}
	return json.Marshal(m)
}
