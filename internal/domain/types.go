package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IDList is an ordered set of entity IDs persisted as a JSON array.
type IDList []uuid.UUID

// Contains reports whether id is in the list.
func (l IDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle returns a copy with id removed if present, or appended otherwise.
func (l IDList) Toggle(id uuid.UUID) (IDList, bool) {
	out := make(IDList, 0, len(l)+1)
	removed := false
	for _, v := range l {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	if !removed {
		out = append(out, id)
	}
	return out, !removed
}

// Strings renders the IDs as strings.
func (l IDList) Strings() []string {
	out := make([]string, len(l))
	for i, v := range l {
		out[i] = v.String()
	}
	return out
}

// ParseIDList parses string IDs, skipping invalid entries.
func ParseIDList(ids []string) IDList {
	out := make(IDList, 0, len(ids))
	for _, s := range ids {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *IDList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// StringList is a list of strings persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}
