package diagnostic

import (
	"go.uber.org/zap"
)

// Report writes every diagnostic to the logger. Quiet suppresses console
// output only; the list itself is left untouched.
func (d *Diagnostics) Report(log *zap.SugaredLogger, quiet bool) {
	if quiet || log == nil {
		return
	}

	for _, diag := range d.All() {
		fields := []any{
			"kind", diag.Kind.String(),
			"code", diag.Code,
		}

		if diag.File != "" {
			fields = append(fields, "file", diag.File)
		}

		if diag.Decl != "" {
			fields = append(fields, "decl", diag.Decl)
		}

		if !diag.Span.IsZero() {
			fields = append(fields, "span", diag.Span.String())
		}

		if len(diag.Suggestions) > 0 {
			fields = append(fields, "suggestions", diag.Suggestions)
		}

		switch diag.Severity {
		case DiagnosticError:
			log.Errorw(diag.Message, fields...)
		case DiagnosticWarning:
			log.Warnw(diag.Message, fields...)
		default:
			log.Infow(diag.Message, fields...)
		}
	}
}
