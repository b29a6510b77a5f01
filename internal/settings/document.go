package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// Document is a settings file as a key/value mapping. Rendering sorts the
// keys explicitly; nothing here depends on map iteration order.
type Document struct {
	values map[string]any
}

// Empty returns a document with no keys.
func Empty() *Document {
	return &Document{values: make(map[string]any)}
}

// Parse reads JSONC text (comments and trailing commas allowed) into a
// Document. Blank text parses to an empty document. A malformed document is
// an error; deciding to fall back to an empty document is the caller's call,
// not the parser's.
func Parse(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return Empty(), nil
	}

	var values map[string]any
	if err := json5.Unmarshal([]byte(text), &values); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return &Document{values: values}, nil
}

// Set assigns value to key, replacing any previous value.
func (d *Document) Set(key string, value any) {
	d.values[key] = value
}

// Get returns the value for key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of top-level keys.
func (d *Document) Len() int { return len(d.values) }

// Keys returns the top-level keys sorted ascending.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render serializes the document as JSON with the given indent width and a
// trailing newline. Top-level keys are emitted in sorted order via an
// explicit sort; nested objects are handled by encoding/json, which also
// sorts map keys. Equal documents render to identical bytes.
func (d *Document) Render(indentWidth int) (string, error) {
	if indentWidth < 1 {
		indentWidth = DefaultIndent
	}
	unit := strings.Repeat(" ", indentWidth)

	if len(d.values) == 0 {
		return "{}\n", nil
	}

	var b strings.Builder
	b.WriteString("{\n")

	keys := d.Keys()
	for i, key := range keys {
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return "", fmt.Errorf("rendering key %q: %w", key, err)
		}
		// Prefix is the unit so nested lines line up under the key.
		valJSON, err := json.MarshalIndent(d.values[key], unit, unit)
		if err != nil {
			return "", fmt.Errorf("rendering value for %q: %w", key, err)
		}

		b.WriteString(unit)
		b.Write(keyJSON)
		b.WriteString(": ")
		b.Write(valJSON)
		if i < len(keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("}\n")
	return b.String(), nil
}
