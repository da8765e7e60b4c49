package records

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Native is a Source over plain Go values: map[string]any and []any are
// tables, everything else is a scalar.
type Native struct{}

// Len returns the length of a []any table. Keyed tables have length 0.
func (Native) Len(t Value) int {
	if seq, ok := t.([]any); ok {
		return len(seq)
	}
	return 0
}

// Index returns seq[i-1] for 1 <= i <= len(seq).
func (Native) Index(t Value, i int) Value {
	seq, ok := t.([]any)
	if !ok || i < 1 || i > len(seq) {
		return nil
	}
	return seq[i-1]
}

// Field returns m[key] for a map table.
func (Native) Field(t Value, key string) Value {
	if m, ok := t.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// IsTable reports whether v is a map or a slice.
func (Native) IsTable(v Value) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// ParseYAML decodes a YAML asset document into a Native root table.
func ParseYAML(data []byte) (Value, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("asset document must be a mapping")
	}
	return root, nil
}

// LoadYAML reads a YAML asset file and returns its root table.
func LoadYAML(path string) (Source, Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading asset file: %w", err)
	}
	root, err := ParseYAML(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Native{}, root, nil
}
