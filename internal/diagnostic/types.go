package diagnostic

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/common"
)

// Diagnostics holds all diagnostic information collected while processing one file.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Kind places the diagnostic in the error taxonomy.
	Kind Kind
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// File is the input file the diagnostic relates to (if any).
	File string
	// Decl is the qualified declaration name (if any).
	Decl string
	// Span locates the declaration in the source (if known).
	Span common.Span
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(kind Kind, code, message, decl string, span common.Span) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Kind:     kind,
		Code:     code,
		Message:  message,
		Decl:     decl,
		Span:     span,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(kind Kind, code, message, decl string, span common.Span) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Kind:     kind,
		Code:     code,
		Message:  message,
		Decl:     decl,
		Span:     span,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(kind Kind, code, message, decl string, span common.Span) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Kind:     kind,
		Code:     code,
		Message:  message,
		Decl:     decl,
		Span:     span,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Len returns the total number of diagnostics of any severity.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// WithFile stamps every diagnostic that has no file with the given one.
func (d *Diagnostics) WithFile(file string) {
	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for i := range list {
			if list[i].File == "" {
				list[i].File = file
			}
		}
	}
}

// All returns every diagnostic ordered errors, warnings, infos.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Infos...)

	return all
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
// The result is marked with the kind of the first error.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	return combine(d.Errors)
}

// Fatal returns the error that should abort the current file. Without strict
// mode only error diagnostics are fatal. In strict mode every diagnostic is.
func (d *Diagnostics) Fatal(strict bool) error {
	if !strict {
		return d.Error()
	}

	if d.Len() == 0 {
		return nil
	}

	return errors.WithHint(combine(d.All()), "strict mode promotes every diagnostic to an error")
}

func combine(list []Diagnostic) error {
	parts := make([]string, 0, len(list))
	for _, e := range list {
		parts = append(parts, e.String())
	}

	return errors.Mark(errors.New(strings.Join(parts, "; ")), list[0].Kind.Sentinel())
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.File != "" {
		loc := d.File
		if !d.Span.IsZero() {
			loc += ":" + d.Span.Start.String()
		}

		prefix = append(prefix, loc)
	}

	if d.Decl != "" {
		prefix = append(prefix, "["+d.Decl+"]")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
