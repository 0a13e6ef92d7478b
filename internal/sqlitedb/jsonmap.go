package sqlitedb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeMap serializes an opaque settings/metadata map. A nil map encodes
// as an empty object.
func EncodeMap(value map[string]any) (string, error) {
	if value == nil {
		return "{}", nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode map: %w", err)
	}
	return string(data), nil
}

// DecodeMap parses a stored map. Empty or malformed text decodes to an empty
// map so a damaged blob never hides the rest of the row.
func DecodeMap(raw string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
