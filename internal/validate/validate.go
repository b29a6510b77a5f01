package validate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/everstacklabs/modelsync/internal/copilot"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // blocks the write
	SeverityWarning                 // reported but doesn't block
)

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity
	Model    string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, i.Model, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue {
	var errs []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue {
	var warns []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			warns = append(warns, i)
		}
	}
	return warns
}

// minReasonableContext flags entries whose window looks too small to be a
// usable chat model rather than a misreported value.
const minReasonableContext = 2048

// ValidateEntry checks a single config entry for shape problems.
func ValidateEntry(e copilot.Entry) *Result {
	r := &Result{}

	if e.Name == "" {
		r.Issues = append(r.Issues, Issue{SeverityError, e.Name, "name", "required field is empty"})
	} else if strings.ContainsAny(e.Name, " \t") {
		r.Issues = append(r.Issues, Issue{SeverityWarning, e.Name, "name", "model name contains whitespace"})
	}

	if e.URL == "" {
		r.Issues = append(r.Issues, Issue{SeverityError, e.Name, "url", "required field is empty"})
	} else {
		u, err := url.Parse(e.URL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			r.Issues = append(r.Issues, Issue{SeverityError, e.Name, "url",
				fmt.Sprintf("%q is not an absolute http(s) URL", e.URL)})
		}
	}

	if e.MaxInputTokens <= 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, e.Name, "maxInputTokens",
			fmt.Sprintf("value %d must be positive", e.MaxInputTokens)})
	} else if e.MaxInputTokens < minReasonableContext {
		r.Issues = append(r.Issues, Issue{SeverityWarning, e.Name, "maxInputTokens",
			fmt.Sprintf("value %d is unusually small for a chat model", e.MaxInputTokens)})
	}
	if e.MaxOutputTokens <= 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, e.Name, "maxOutputTokens",
			fmt.Sprintf("value %d must be positive", e.MaxOutputTokens)})
	}

	return r
}

// ValidateBlock validates every entry in a config block.
func ValidateBlock(b *copilot.Block) *Result {
	r := &Result{}
	for _, e := range b.Entries() {
		er := ValidateEntry(e)
		r.Issues = append(r.Issues, er.Issues...)
	}
	return r
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	errors := r.Errors()
	warnings := r.Warnings()

	if len(errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(errors))
		for _, e := range errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&b, "Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}

	return b.String()
}
