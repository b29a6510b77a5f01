package settings

import (
	"fmt"
	"os"
	"strings"
)

// DefaultIndent is used when no indented line exists to infer from.
const DefaultIndent = 2

// ReadFile returns the raw text of the settings file and whether it existed.
// A missing file is not an error.
func ReadFile(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// InferIndent detects the indent width of existing content: the length of
// the run of identical whitespace characters opening the first indented
// line. Falls back to DefaultIndent.
func InferIndent(raw string) int {
	for _, line := range strings.Split(raw, "\n") {
		if len(line) == 0 || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		lead := line[0]
		width := 0
		for width < len(line) && line[width] == lead {
			width++
		}
		return width
	}
	return DefaultIndent
}
