package diagnostic

import (
	"fmt"
	"strings"

	"caster/internal/common"
)

// DiagnosticSeverity orders diagnostics from informational to fatal.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

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

// Diagnostic is one finding about a type pair or a member of it.
type Diagnostic struct {
	Severity DiagnosticSeverity
	// Code is a stable snake_case or kebab-case identifier of the finding.
	Code    string
	Message string
	// TypePair and FieldPath locate the finding, both may be empty.
	TypePair    string
	FieldPath   string
	Suggestions []string
}

// String renders the diagnostic as "severity code [pair] [path]: message (did you mean ...?)".
func (d Diagnostic) String() string {
	parts := []string{d.Severity.String(), d.Code}
	for _, p := range []string{d.TypePair, d.FieldPath} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	out := strings.Join(parts, " ") + ": " + d.Message
	if len(d.Suggestions) > 0 {
		out += fmt.Sprintf(" (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	return out
}

// Diagnostics collects findings by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Add files diag under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

func (d *Diagnostics) AddError(code, message, typePair, fieldPath string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, TypePair: typePair, FieldPath: fieldPath})
}

func (d *Diagnostics) AddWarning(code, message, typePair, fieldPath string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, TypePair: typePair, FieldPath: fieldPath})
}

// All returns every diagnostic, errors first.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Infos...)
}

func (d *Diagnostics) HasErrors() bool { return len(d.Errors) > 0 }

// IsValid reports whether there are no errors; warnings and infos do not count.
func (d *Diagnostics) IsValid() bool { return !d.HasErrors() }

// Summary joins the error diagnostics into one line, empty when valid.
func (d *Diagnostics) Summary() string {
	msgs := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		msgs = append(msgs, e.String())
	}

	return strings.Join(msgs, "; ")
}
