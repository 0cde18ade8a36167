package lspserver

import (
	"context"
	"encoding/json"
	"sort"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/lang"
)

var completionKeywords = []string{"else", "false", "fun", "if", "let", "return", "true", "type", "while"}

// handleCompletion answers textDocument/completion with every symbol visible
// at the cursor plus the language keywords.
func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	scope := scopeAtPosition(docCtx, container, fromProtocolPosition(params.Position))
	if scope == nil {
		return reply(ctx, nil, nil)
	}

	visible := scope.Visible()
	items := make([]protocol.CompletionItem, 0, len(visible)+len(completionKeywords))
	for name, decl := range visible {
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   completionKind(decl),
			Detail: renderSignature(docCtx.Program, decl),
		})
	}
	for _, kw := range completionKeywords {
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  protocol.CompletionItemKindKeyword,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })

	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: items}, nil)
}

// scopeAtPosition finds the innermost scope enclosing the cursor. A cursor
// in empty space still lands on the nearest enclosing node, so the module
// scope is the floor.
func scopeAtPosition(docCtx *analysis.DocumentContext, container *lang.SourceContainer, pos analysis.LineCol) *lang.Scope {
	node := analysis.FindNodeAt(docCtx.Program, container, pos)
	if node != nil {
		if sc := docCtx.Program.ScopeOf(node); sc != nil {
			return sc
		}
	}
	if root := docCtx.Program.RootFor(container); root != nil {
		return docCtx.Program.ScopeOf(root)
	}
	return nil
}

func completionKind(decl *lang.Node) protocol.CompletionItemKind {
	switch decl.Kind {
	case lang.KindFunctionDecl:
		return protocol.CompletionItemKindFunction
	case lang.KindTypeDecl:
		return protocol.CompletionItemKindStruct
	case lang.KindParameterDecl, lang.KindLetDecl:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}
