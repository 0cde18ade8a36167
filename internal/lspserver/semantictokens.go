package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/lang"
)

// tokenTypeLegend is the semantic token legend advertised in the initialize
// response. Index positions are the wire encoding; do not reorder.
var tokenTypeLegend = []string{
	"keyword",
	"function",
	"parameter",
	"variable",
	"type",
	"number",
	"string",
	"comment",
}

const (
	tokKeyword uint32 = iota
	tokFunction
	tokParameter
	tokVariable
	tokType
	tokNumber
	tokString
	tokComment
)

// handleSemanticTokensFull answers textDocument/semanticTokens/full with
// delta-encoded tokens for the whole document.
func (s *Server) handleSemanticTokensFull(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SemanticTokensParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	docCtx, container, ok := s.documentContextFor(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, protocol.SemanticTokens{
		Data: encodeSemanticTokens(docCtx.Program, container),
	}, nil)
}

// encodeSemanticTokens lexes the container and classifies each token,
// producing the protocol's relative (deltaLine, deltaStart, length, type,
// modifiers) quintuples. Identifiers are classified through the program's
// resolved references; unresolvable identifiers are skipped rather than
// guessed at.
func encodeSemanticTokens(prog *lang.Program, c *lang.SourceContainer) []uint32 {
	tokens, _ := lang.Lex(c)

	var (
		data     []uint32
		prevLine uint32
		prevChar uint32
	)
	push := func(span lang.Span, tokType uint32) {
		pos := analysis.PositionForOffset(c, span.Start)
		deltaLine := pos.Line - prevLine
		deltaChar := pos.Character
		if deltaLine == 0 {
			deltaChar -= prevChar
		}
		data = append(data, deltaLine, deltaChar, uint32(span.End-span.Start), tokType, 0)
		prevLine, prevChar = pos.Line, pos.Character
	}

	for _, tok := range tokens {
		switch {
		case tok.Kind == lang.TokenEOF:
			continue
		case tok.Kind.IsKeyword():
			push(tok.Span, tokKeyword)
		case tok.Kind == lang.TokenInt:
			push(tok.Span, tokNumber)
		case tok.Kind == lang.TokenString:
			push(tok.Span, tokString)
		case tok.Kind == lang.TokenComment:
			push(tok.Span, tokComment)
		case tok.Kind == lang.TokenIdent:
			if tokType, ok := classifyIdent(prog, c, tok.Span.Start); ok {
				push(tok.Span, tokType)
			}
		}
	}
	return data
}

// classifyIdent maps the identifier at an offset to a legend index by what
// it declares or resolves to.
func classifyIdent(prog *lang.Program, c *lang.SourceContainer, offset int) (uint32, bool) {
	node := analysis.FindNode(prog, c, offset)
	if node == nil {
		return 0, false
	}

	decl := node
	if !node.Kind.IsDeclaration() || !node.NameSpan.Contains(offset) {
		decl = analysis.ResolveDefinition(prog, node)
	}
	if decl == nil {
		return 0, false
	}
	switch decl.Kind {
	case lang.KindFunctionDecl:
		return tokFunction, true
	case lang.KindParameterDecl:
		return tokParameter, true
	case lang.KindLetDecl:
		return tokVariable, true
	case lang.KindTypeDecl:
		return tokType, true
	}
	return 0, false
}
