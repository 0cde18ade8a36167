package lspserver

import (
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/lang"
)

// LSP positions are 0-based line/character, end-exclusive ranges. The
// analysis layer speaks the same 0-based convention through LineCol; the
// +1/-1 shift to the frontend's 1-based positions happens inside analysis.

func fromProtocolPosition(pos protocol.Position) analysis.LineCol {
	return analysis.LineCol{Line: pos.Line, Character: pos.Character}
}

func toProtocolPosition(pos analysis.LineCol) protocol.Position {
	return protocol.Position{Line: pos.Line, Character: pos.Character}
}

// spanRange converts a byte span in a container to a protocol range.
func spanRange(c *lang.SourceContainer, span lang.Span) protocol.Range {
	start, end := analysis.RangeForSpan(c, span)
	return protocol.Range{Start: toProtocolPosition(start), End: toProtocolPosition(end)}
}

// nodeLocation converts a node's defining-identifier span to a protocol
// location. Falls back to the full node span for unnamed nodes.
func nodeLocation(node *lang.Node) protocol.Location {
	span := node.NameSpan
	if span.End <= span.Start {
		span = node.Span
	}
	return protocol.Location{
		URI:   protocol.DocumentURI(node.Container.URL),
		Range: spanRange(node.Container, span),
	}
}

// documentContextFor resolves request params to a document context and its
// source container. The bool result is false when the document could not be
// resolved; callers should answer "no result" in that case.
func (s *Server) documentContextFor(uri protocol.DocumentURI) (*analysis.DocumentContext, *lang.SourceContainer, bool) {
	url, err := analysis.ParseURL(string(uri))
	if err != nil {
		s.log.WithField("uri", string(uri)).WithError(err).Warn("unparseable document uri")
		return nil, nil, false
	}
	docCtx, err := s.store.DocumentContext(url)
	if err != nil {
		s.log.WithField("uri", url.String()).WithError(err).Debug("no document context")
		return nil, nil, false
	}
	container := docCtx.Program.ContainerFor(url.String())
	if container == nil {
		return docCtx, nil, false
	}
	return docCtx, container, true
}
