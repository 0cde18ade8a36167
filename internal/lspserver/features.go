package lspserver

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/lang"
)

// handleDefinition answers textDocument/definition. A position that does not
// name anything yields a null response, never an error.
func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	node := analysis.FindNodeAt(docCtx.Program, container, fromProtocolPosition(params.Position))
	decl := analysis.ResolveDefinition(docCtx.Program, node)
	if decl == nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, []protocol.Location{nodeLocation(decl)}, nil)
}

// handleHover answers textDocument/hover with the resolved declaration's
// signature.
func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	pos := fromProtocolPosition(params.Position)
	node := analysis.FindNodeAt(docCtx.Program, container, pos)
	decl := analysis.ResolveSymbolAt(docCtx.Program, container, pos)
	if decl == nil {
		return reply(ctx, nil, nil)
	}

	hover := protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: "```mica\n" + renderSignature(docCtx.Program, decl) + "\n```",
		},
	}
	if node != nil && node.Container == container {
		r := spanRange(container, node.Span)
		hover.Range = &r
	}
	return reply(ctx, hover, nil)
}

// handleReferences answers textDocument/references. The defining identifier
// is included only when the client asks for it.
func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	decl := analysis.ResolveSymbolAt(docCtx.Program, container, fromProtocolPosition(params.Position))
	if decl == nil {
		return reply(ctx, nil, nil)
	}

	refs := analysis.FindReferences(docCtx.Program, decl)
	if params.Context.IncludeDeclaration {
		refs = append(refs, analysis.Reference{Container: decl.Container, Span: decl.NameSpan})
	}
	analysis.SortReferences(refs)

	locations := make([]protocol.Location, len(refs))
	for i, ref := range refs {
		locations[i] = protocol.Location{
			URI:   protocol.DocumentURI(ref.Container.URL),
			Range: spanRange(ref.Container, ref.Span),
		}
	}
	return reply(ctx, locations, nil)
}

// handleDocumentHighlight highlights all same-file occurrences of the symbol
// under the cursor, including its declaration.
func (s *Server) handleDocumentHighlight(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentHighlightParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	decl := analysis.ResolveSymbolAt(docCtx.Program, container, fromProtocolPosition(params.Position))
	if decl == nil {
		return reply(ctx, nil, nil)
	}

	refs := analysis.FindReferences(docCtx.Program, decl)
	refs = append(refs, analysis.Reference{Container: decl.Container, Span: decl.NameSpan})
	analysis.SortReferences(refs)

	var highlights []protocol.DocumentHighlight
	for _, ref := range refs {
		if ref.Container != container {
			continue
		}
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: spanRange(container, ref.Span),
			Kind:  protocol.DocumentHighlightKindText,
		})
	}
	if len(highlights) == 0 {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, highlights, nil)
}

// handleRename answers textDocument/rename with a workspace edit covering
// the declaration and every reference.
func (s *Server) handleRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.RenameParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}
	if !isIdentifier(params.NewName) {
		return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%q is not a valid identifier", params.NewName))
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	decl := analysis.ResolveSymbolAt(docCtx.Program, container, fromProtocolPosition(params.Position))
	if decl == nil {
		return reply(ctx, nil, nil)
	}

	// Rename rewrites the defining identifier along with every reference.
	refs := analysis.FindReferences(docCtx.Program, decl)
	refs = append(refs, analysis.Reference{Container: decl.Container, Span: decl.NameSpan})
	analysis.SortReferences(refs)

	changes := make(map[uri.URI][]protocol.TextEdit)
	for _, ref := range refs {
		key := uri.URI(ref.Container.URL)
		changes[key] = append(changes[key], protocol.TextEdit{
			Range:   spanRange(ref.Container, ref.Span),
			NewText: params.NewName,
		})
	}
	return reply(ctx, protocol.WorkspaceEdit{Changes: changes}, nil)
}

// renderSignature renders a declaration the way it would be written.
func renderSignature(prog *lang.Program, decl *lang.Node) string {
	switch decl.Kind {
	case lang.KindFunctionDecl:
		var b strings.Builder
		b.WriteString("fun ")
		b.WriteString(decl.Name)
		b.WriteByte('(')
		for i, param := range decl.Parameters() {
			if i > 0 {
				b.WriteString(", ")
			}
			if param.Label != "" {
				b.WriteString(param.Label)
				b.WriteByte(' ')
			}
			b.WriteString(param.Name)
			b.WriteString(": ")
			b.WriteString(annotationName(param))
		}
		b.WriteByte(')')
		if ret := decl.ResultTypeRef(); ret != nil {
			b.WriteString(" -> ")
			b.WriteString(ret.Name)
		}
		return b.String()
	case lang.KindLetDecl:
		if t := prog.TypeOf(decl); t != nil {
			return "let " + decl.Name + ": " + t.String()
		}
		return "let " + decl.Name
	case lang.KindParameterDecl:
		return decl.Name + ": " + annotationName(decl)
	case lang.KindTypeDecl:
		return "type " + decl.Name
	default:
		return decl.Name
	}
}

func annotationName(decl *lang.Node) string {
	if tr := decl.TypeAnnotation(); tr != nil {
		return tr.Name
	}
	return "?"
}

// isIdentifier reports whether the string is a lexically valid Mica
// identifier and not a reserved word.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		isLetter := ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !(ch >= '0' && ch <= '9') {
			return false
		}
	}
	switch s {
	case "fun", "let", "type", "return", "if", "else", "while", "true", "false":
		return false
	}
	return true
}
