package diagnostic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"caster/internal/diagnostic"
)

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var d diagnostic.Diagnostics
	d.Add(diagnostic.Diagnostic{Severity: diagnostic.DiagnosticInfo, Code: "unmapped-member", FieldPath: "Extra", Message: "left unchanged"})
	d.AddWarning("target_overridden", "overridden", "a.A->b.B", "Name")
	assert.True(t, d.IsValid())
	assert.Empty(t, d.Summary())

	d.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        "invalid_source_path",
		Message:     "unknown member",
		TypePair:    "a.A->b.B",
		FieldPath:   "Nmae",
		Suggestions: []string{"Name", "Game"},
	})
	d.AddError("missing_target", "no target", "", "")

	assert.True(t, d.HasErrors())
	assert.Len(t, d.All(), 4)
	assert.Equal(t, diagnostic.DiagnosticError, d.All()[0].Severity)
	assert.Equal(t, "unmapped-member", d.All()[3].Code)

	assert.Equal(t, "error invalid_source_path a.A->b.B Nmae: unknown member (did you mean Name, Game?)", d.Errors[0].String())
	assert.Equal(t, "error missing_target: no target", d.Errors[1].String())
	assert.Equal(t,
		"error invalid_source_path a.A->b.B Nmae: unknown member (did you mean Name, Game?); error missing_target: no target",
		d.Summary())
	assert.Equal(t, "warning", diagnostic.DiagnosticWarning.String())
}
