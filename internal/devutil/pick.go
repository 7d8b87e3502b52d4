package devutil

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Pick round-trips v through JSON and keeps only the requested keys. With no
// keys, every key is kept. Keys missing from v are skipped.
func Pick(v any, keys ...string) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("devutil: marshal: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("devutil: %T is not a JSON object: %w", v, err)
	}
	if len(keys) == 0 {
		return m, nil
	}

	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := m[k]; ok {
			out[k] = val
		}
	}
	return out, nil
}

// WriteFields prints one "key: value" line per entry, sorted by key.
func WriteFields(w io.Writer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %v\n", k, m[k]); err != nil {
			return err
		}
	}
	return nil
}
