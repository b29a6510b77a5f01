package diff

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmFunc decides whether a non-empty changeset may be applied. The
// pipeline takes one of these so the merge/diff/backup core stays testable
// without a console.
type ConfirmFunc func(path string, cs *ChangeSet) (bool, error)

// AlwaysApply skips the interactive gate (--yes).
func AlwaysApply(string, *ChangeSet) (bool, error) { return true, nil }

// StdinConfirm renders the changeset to out and reads one line from in.
// Only "y" or "yes" (case-insensitive) count as approval; anything else,
// including unavailable input, cancels.
func StdinConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	return func(path string, cs *ChangeSet) (bool, error) {
		fmt.Fprintln(out)
		fmt.Fprint(out, Render(path, cs))
		fmt.Fprint(out, "\nApply these changes? [y/N]: ")

		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("reading confirmation: %w", err)
			}
			return false, nil // EOF: no input means no approval
		}

		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
}
