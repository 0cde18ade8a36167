package lang

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one problem reported by a frontend stage. Diagnostics are
// data, not errors: a stage that reports diagnostics still produces whatever
// partial result it could.
type Diagnostic struct {
	Container *SourceContainer
	Span      Span
	Severity  Severity
	// Code identifies the diagnostic category, e.g. "parse/unexpected-token".
	Code    string
	Message string
}

// Position returns the 1-based start position of the diagnostic.
func (d Diagnostic) Position() Position {
	if d.Container == nil {
		return Position{Line: 1, Column: 1}
	}
	return d.Container.PositionFor(d.Span.Start)
}

func errDiag(c *SourceContainer, span Span, code, msg string) Diagnostic {
	return Diagnostic{Container: c, Span: span, Severity: SeverityError, Code: code, Message: msg}
}

// hasErrors reports whether any diagnostic in the set is an error.
func hasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
