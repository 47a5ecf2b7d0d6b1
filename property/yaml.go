package property

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// YAML reads the first readable file among paths. Nested mappings become
// dotted keys; sequences of scalars are also joined with commas under their
// own key.
func YAML(paths ...string) (Map, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		m, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("property: parse %s: %w", path, err)
		}
		return m, nil
	}

	return nil, ErrNoSource
}

func ParseYAML(data []byte) (Map, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	out := make(Map)
	flatten(out, "", doc)
	return out, nil
}

func flatten(out Map, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(out, join(prefix, k), child)
		}
	case map[any]any:
		for k, child := range val {
			flatten(out, join(prefix, fmt.Sprint(k)), child)
		}
	case []any:
		scalars := make([]string, 0, len(val))
		for i, child := range val {
			flatten(out, join(prefix, strconv.Itoa(i)), child)
			if s, ok := scalar(child); ok {
				scalars = append(scalars, s)
			}
		}
		if len(scalars) == len(val) {
			out[prefix] = strings.Join(scalars, ",")
		}
	default:
		if s, ok := scalar(val); ok {
			out[prefix] = s
		}
	}
}

func scalar(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case map[string]any, map[any]any, []any:
		return "", false
	case string:
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Keys lists the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
