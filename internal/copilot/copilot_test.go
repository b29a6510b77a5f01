package copilot

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/everstacklabs/modelsync/internal/catalog"
)

func TestSynthesizeFiltersNonLLMTypes(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{ID: "text-embed", Type: "embedding", MaxContextLength: 512},
		{ID: "chat-model", Type: "llm", MaxContextLength: 4096},
		{ID: "vision-model", Type: "vlm", MaxContextLength: 8192},
	}

	block := Synthesize(descriptors, "http://localhost:3000/v1")

	if block.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", block.Len())
	}
	if _, ok := block.Entry("text-embed"); ok {
		t.Error("embedding model should be filtered out")
	}
	if _, ok := block.Entry("chat-model"); !ok {
		t.Error("llm model should be included")
	}
	if _, ok := block.Entry("vision-model"); !ok {
		t.Error("vlm model should be included")
	}
}

func TestSynthesizeDefaultsContextLength(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{ID: "no-context", Type: "llm"},
	}

	block := Synthesize(descriptors, "http://x/v1")

	e, ok := block.Entry("no-context")
	if !ok {
		t.Fatal("expected entry for no-context")
	}
	if e.MaxInputTokens != DefaultContextLength {
		t.Errorf("maxInputTokens = %d, want %d", e.MaxInputTokens, DefaultContextLength)
	}
	if e.MaxOutputTokens != DefaultContextLength {
		t.Errorf("maxOutputTokens = %d, want %d", e.MaxOutputTokens, DefaultContextLength)
	}
}

func TestSynthesizeCapabilityMapping(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{ID: "tools-only", Type: "llm", Capabilities: []string{"tool_use"}, MaxContextLength: 4096},
		{ID: "vision-only", Type: "vlm", Capabilities: []string{"vision"}, MaxContextLength: 4096},
	}

	block := Synthesize(descriptors, "http://x/v1")

	tools, _ := block.Entry("tools-only")
	if !tools.ToolCalling || tools.Vision {
		t.Errorf("tools-only: toolCalling=%v vision=%v, want true/false", tools.ToolCalling, tools.Vision)
	}

	vision, _ := block.Entry("vision-only")
	if vision.ToolCalling || !vision.Vision {
		t.Errorf("vision-only: toolCalling=%v vision=%v, want false/true", vision.ToolCalling, vision.Vision)
	}
}

func TestSynthesizeFixedDefaults(t *testing.T) {
	block := Synthesize([]catalog.Descriptor{
		{ID: "m", Type: "llm", MaxContextLength: 2048},
	}, "http://x/v1")

	e, _ := block.Entry("m")
	if !e.Thinking {
		t.Error("thinking should default to true")
	}
	if e.RequiresAPIKey {
		t.Error("requiresAPIKey should default to false")
	}
	if e.URL != "http://x/v1" {
		t.Errorf("url = %q, want http://x/v1", e.URL)
	}
	if e.Name != "m" {
		t.Errorf("name = %q, want m", e.Name)
	}
}

func TestBlockOrderedByName(t *testing.T) {
	block := Synthesize([]catalog.Descriptor{
		{ID: "zeta", Type: "llm", MaxContextLength: 1024},
		{ID: "alpha", Type: "llm", MaxContextLength: 1024},
		{ID: "mid", Type: "llm", MaxContextLength: 1024},
	}, "http://x/v1")

	names := block.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestMarshalDeterministic(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{ID: "b", Type: "llm", Capabilities: []string{"tool_use"}, MaxContextLength: 4096},
		{ID: "a", Type: "vlm", Capabilities: []string{"vision"}, MaxContextLength: 8192},
	}

	first, err := json.Marshal(Synthesize(descriptors, "http://x/v1"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Synthesize(descriptors, "http://x/v1"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("serialization not deterministic:\n%s\nvs\n%s", first, again)
		}
	}

	// a must come before b
	ia := bytes.Index(first, []byte(`"a"`))
	ib := bytes.Index(first, []byte(`"b"`))
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("entries not sorted by name: %s", first)
	}
}

func TestEntryFieldOrderAlphabetical(t *testing.T) {
	data, err := json.Marshal(Entry{Name: "m", URL: "http://x/v1"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	fields := []string{
		"maxInputTokens", "maxOutputTokens", "name", "requiresAPIKey",
		"thinking", "toolCalling", "url", "vision",
	}
	prev := -1
	for _, f := range fields {
		i := bytes.Index(data, []byte(`"`+f+`"`))
		if i < 0 {
			t.Fatalf("field %q missing from %s", f, data)
		}
		if i < prev {
			t.Fatalf("field %q out of order in %s", f, data)
		}
		prev = i
	}
}

func TestBlockFromValueRoundTrip(t *testing.T) {
	original := Synthesize([]catalog.Descriptor{
		{ID: "m1", Type: "llm", Capabilities: []string{"tool_use"}, MaxContextLength: 4096},
	}, "http://x/v1")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	rebuilt, err := BlockFromValue(generic)
	if err != nil {
		t.Fatalf("BlockFromValue failed: %v", err)
	}

	e, ok := rebuilt.Entry("m1")
	if !ok {
		t.Fatal("expected m1 in rebuilt block")
	}
	if !e.ToolCalling || e.MaxInputTokens != 4096 {
		t.Errorf("rebuilt entry = %+v", e)
	}
}
