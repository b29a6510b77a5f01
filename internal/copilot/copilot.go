package copilot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/everstacklabs/modelsync/internal/catalog"
)

// ManagedKey is the settings key this tool owns. Everything else in the
// settings document is left alone.
const ManagedKey = "github.copilot.chat.customOAIModels"

// DefaultContextLength is assumed when the API omits max_context_length.
const DefaultContextLength = 8192

// includedTypes are the model type tags that end up in the config.
// Embedding and other auxiliary models are filtered out.
var includedTypes = map[string]bool{
	"llm": true,
	"vlm": true,
}

// Entry is the per-model Copilot configuration. Field order matches the
// serialized order: keys are alphabetical so repeated runs render
// byte-identical output.
type Entry struct {
	MaxInputTokens  int    `json:"maxInputTokens"`
	MaxOutputTokens int    `json:"maxOutputTokens"`
	Name            string `json:"name"`
	RequiresAPIKey  bool   `json:"requiresAPIKey"`
	Thinking        bool   `json:"thinking"`
	ToolCalling     bool   `json:"toolCalling"`
	URL             string `json:"url"`
	Vision          bool   `json:"vision"`
}

// Block is the full customOAIModels mapping, kept as an explicit sequence
// sorted by model name so serialization never depends on map iteration order.
type Block struct {
	entries []Entry
}

// NewBlock builds a Block from entries, sorting them by name ascending.
func NewBlock(entries []Entry) *Block {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Block{entries: sorted}
}

// Entries returns the entries in serialization order.
func (b *Block) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of entries.
func (b *Block) Len() int { return len(b.entries) }

// Entry returns the entry for a model name.
func (b *Block) Entry(name string) (Entry, bool) {
	for _, e := range b.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the model names in serialization order.
func (b *Block) Names() []string {
	names := make([]string, len(b.entries))
	for i, e := range b.entries {
		names[i] = e.Name
	}
	return names
}

// MarshalJSON renders the block as a JSON object with entries in sorted
// name order. encoding/json re-indents this when the caller asks for it.
func (b *Block) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BlockFromValue rebuilds a Block from a decoded settings value, as found
// under ManagedKey in an existing document. Entries missing a name inherit
// their mapping key.
func BlockFromValue(v any) (*Block, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("re-encoding config block: %w", err)
	}

	var byName map[string]Entry
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, fmt.Errorf("decoding config block: %w", err)
	}

	entries := make([]Entry, 0, len(byName))
	for name, e := range byName {
		if e.Name == "" {
			e.Name = name
		}
		entries = append(entries, e)
	}
	return NewBlock(entries), nil
}

// Synthesize turns discovered descriptors into the Copilot config block.
// Only llm/vlm models are included; capability flags come straight from the
// descriptor; thinking and requiresAPIKey are fixed defaults meant for later
// manual editing.
func Synthesize(descriptors []catalog.Descriptor, baseURL string) *Block {
	var entries []Entry
	for _, d := range descriptors {
		if !includedTypes[d.Type] {
			continue
		}

		contextLength := d.MaxContextLength
		if contextLength <= 0 {
			contextLength = DefaultContextLength
		}

		entries = append(entries, Entry{
			MaxInputTokens:  contextLength,
			MaxOutputTokens: contextLength,
			Name:            d.ID,
			RequiresAPIKey:  false,
			Thinking:        true,
			ToolCalling:     d.HasCapability("tool_use"),
			URL:             baseURL,
			Vision:          d.HasCapability("vision"),
		})
	}
	return NewBlock(entries)
}
