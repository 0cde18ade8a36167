package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/lang"
)

// handleDocumentSymbol answers textDocument/documentSymbol with the
// hierarchical symbol outline of one file.
func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	root := docCtx.Program.RootFor(container)
	if root == nil {
		return reply(ctx, nil, nil)
	}

	symbols := make([]protocol.DocumentSymbol, 0, len(root.Children))
	for _, decl := range root.Children {
		if sym, ok := declSymbol(container, decl); ok {
			symbols = append(symbols, sym)
		}
	}
	return reply(ctx, symbols, nil)
}

// declSymbol converts a declaration node to a document symbol. Functions
// nest their local let bindings as children.
func declSymbol(c *lang.SourceContainer, decl *lang.Node) (protocol.DocumentSymbol, bool) {
	if decl.Name == "" {
		return protocol.DocumentSymbol{}, false
	}

	var kind protocol.SymbolKind
	switch decl.Kind {
	case lang.KindFunctionDecl:
		kind = protocol.SymbolKindFunction
	case lang.KindTypeDecl:
		kind = protocol.SymbolKindStruct
	case lang.KindLetDecl:
		kind = protocol.SymbolKindVariable
	default:
		return protocol.DocumentSymbol{}, false
	}

	sym := protocol.DocumentSymbol{
		Name:           decl.Name,
		Kind:           kind,
		Range:          spanRange(c, decl.Span),
		SelectionRange: spanRange(c, decl.NameSpan),
	}
	if decl.Kind == lang.KindFunctionDecl {
		if body := decl.Body(); body != nil {
			sym.Children = localSymbols(c, body)
		}
	}
	return sym, true
}

// localSymbols collects let bindings inside a function body, recursing into
// nested blocks.
func localSymbols(c *lang.SourceContainer, n *lang.Node) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	for _, child := range n.Children {
		if child.Kind == lang.KindLetDecl && child.Name != "" {
			out = append(out, protocol.DocumentSymbol{
				Name:           child.Name,
				Kind:           protocol.SymbolKindVariable,
				Range:          spanRange(c, child.Span),
				SelectionRange: spanRange(c, child.NameSpan),
			})
			continue
		}
		out = append(out, localSymbols(c, child)...)
	}
	return out
}
