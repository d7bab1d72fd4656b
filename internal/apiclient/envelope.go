package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList reads a collection the API returns either wrapped as
// {"<key>": [...]}, wrapped as {"data": [...]}, or as a bare array. A
// missing collection decodes to an empty slice.
func DecodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	out := []T{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return out, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s envelope: %w", key, err)
	}
	for _, k := range []string{key, "data"} {
		inner, ok := env[k]
		if !ok || bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return out, nil
	}
	return out, nil
}

// DecodeOne reads a record returned either as {"<key>": {...}} or bare.
func DecodeOne[T any](raw json.RawMessage, key string) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, fmt.Errorf("decode %s: empty response", key)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err == nil {
		if inner, ok := env[key]; ok && len(bytes.TrimSpace(inner)) > 0 {
			if err := json.Unmarshal(inner, &out); err != nil {
				return out, fmt.Errorf("decode %s: %w", key, err)
			}
			return out, nil
		}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
