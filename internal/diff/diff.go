package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
)

// Decision is the outcome of the diff + confirmation step.
type Decision int

const (
	Unchanged Decision = iota // no insertion/deletion lines, nothing to do
	Apply                     // user accepted the change
	Cancel                    // user declined, no file mutation
)

func (d Decision) String() string {
	switch d {
	case Unchanged:
		return "unchanged"
	case Apply:
		return "apply"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ChangeSet holds the changed lines between two renderings of a settings
// document. Context lines are suppressed; only insertions and deletions
// are kept, in document order.
type ChangeSet struct {
	Insertions []string
	Deletions  []string
	// Lines preserves the interleaved +/- lines for display.
	Lines []string
}

// HasChanges reports whether any line was inserted or deleted.
func (cs *ChangeSet) HasChanges() bool {
	return len(cs.Insertions) > 0 || len(cs.Deletions) > 0
}

// Compute diffs old against new content line by line. File headers and hunk
// markers are dropped so the changeset carries only real edits.
func Compute(oldContent, newContent string) (*ChangeSet, error) {
	ud := difflib.UnifiedDiff{
		A:       difflib.SplitLines(oldContent),
		B:       difflib.SplitLines(newContent),
		Context: 0,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	cs := &ChangeSet{}
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			continue
		case strings.HasPrefix(line, "+"):
			cs.Insertions = append(cs.Insertions, line[1:])
			cs.Lines = append(cs.Lines, line)
		case strings.HasPrefix(line, "-"):
			cs.Deletions = append(cs.Deletions, line[1:])
			cs.Lines = append(cs.Lines, line)
		}
	}

	return cs, nil
}

var (
	addStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Render formats the changeset for the terminal, additions green and
// deletions red, headed by the target path.
func Render(path string, cs *ChangeSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Diff preview for: %s\n\n", path)
	for _, line := range cs.Lines {
		if strings.HasPrefix(line, "+") {
			b.WriteString(addStyle.Render(line))
		} else {
			b.WriteString(delStyle.Render(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
