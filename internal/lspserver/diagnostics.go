package lspserver

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/lang"
)

// publishDiagnostics pushes the build diagnostics of a document context to
// the client.
func (s *Server) publishDiagnostics(ctx context.Context, docCtx *analysis.DocumentContext) {
	if docCtx == nil {
		return
	}
	uri := protocol.DocumentURI(docCtx.Document.URL.String())
	diagnostics := convertDiagnostics(docCtx.Diagnostics, docCtx.Document.URL)

	if err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}); err != nil {
		s.log.WithError(err).Warn("failed to publish diagnostics")
	}
}

// clearDiagnostics sends an empty diagnostics array to clear issues for a URI.
func (s *Server) clearDiagnostics(ctx context.Context, uri protocol.DocumentURI) {
	if err := s.conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	}); err != nil {
		s.log.WithError(err).Warn("failed to clear diagnostics")
	}
}

// convertDiagnostics converts frontend diagnostics to LSP diagnostics,
// keeping only those belonging to the given document.
func convertDiagnostics(diags []lang.Diagnostic, url analysis.AbsoluteURL) []protocol.Diagnostic {
	target := url.String()
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Container == nil || d.Container.URL != target {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    spanRange(d.Container, d.Span),
			Severity: severityToLSP(d.Severity),
			Source:   serverName,
			Code:     d.Code,
			Message:  d.Message,
		})
	}
	return out
}

// severityToLSP converts a frontend severity to an LSP severity.
func severityToLSP(sev lang.Severity) protocol.DiagnosticSeverity {
	if sev == lang.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}
