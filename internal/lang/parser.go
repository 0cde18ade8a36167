package lang

import "fmt"

// parser is a recursive-descent parser over the token stream. It never
// fails: unexpected input is reported as diagnostics and skipped, and the
// resulting tree covers whatever could be parsed.
type parser struct {
	c     *SourceContainer
	toks  []Token
	pos   int
	diags []Diagnostic
}

// Parse lexes and parses the container's text into a module-rooted tree.
// The returned diagnostics include lexer diagnostics.
func Parse(c *SourceContainer) (*Node, []Diagnostic) {
	tokens, diags := Lex(c)
	// The parser does not care about comments.
	code := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != TokenComment {
			code = append(code, t)
		}
	}
	p := &parser{c: c, toks: code, diags: diags}
	root := p.parseModule()
	return root, p.diags
}

func (p *parser) cur() Token { return p.toks[p.pos] }

func (p *parser) at(kind TokenKind) bool { return p.cur().Kind == kind }

func (p *parser) advance() Token {
	t := p.cur()
	if t.Kind != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) eat(kind TokenKind) (Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	return Token{}, false
}

// expect consumes a token of the given kind or reports a diagnostic and
// returns a zero-width token at the current position.
func (p *parser) expect(kind TokenKind, what string) Token {
	if p.at(kind) {
		return p.advance()
	}
	t := p.cur()
	p.errf(t.Span, "parse/expected", "expected %s", what)
	return Token{Kind: kind, Span: Span{Start: t.Span.Start, End: t.Span.Start}}
}

func (p *parser) errf(span Span, code, format string, args ...any) {
	p.diags = append(p.diags, errDiag(p.c, span, code, fmt.Sprintf(format, args...)))
}

func (p *parser) newNode(kind NodeKind, span Span) *Node {
	return &Node{Kind: kind, Span: span, Container: p.c}
}

func (p *parser) parseModule() *Node {
	root := p.newNode(KindModule, Span{Start: 0, End: len(p.c.Text)})
	for !p.at(TokenEOF) {
		before := p.pos
		root.addChild(p.parseDecl())
		if p.pos == before {
			// Nothing consumed: skip the offending token so we make progress.
			t := p.advance()
			p.errf(t.Span, "parse/unexpected-token", "unexpected %q", t.Text)
		}
	}
	return root
}

func (p *parser) parseDecl() *Node {
	switch p.cur().Kind {
	case TokenFun:
		return p.parseFunctionDecl()
	case TokenLet:
		return p.parseLetDecl()
	case TokenType:
		return p.parseTypeDecl()
	default:
		return p.parseStmt()
	}
}

func (p *parser) parseFunctionDecl() *Node {
	kw := p.expect(TokenFun, "'fun'")
	name := p.expect(TokenIdent, "function name")
	fn := p.newNode(KindFunctionDecl, Span{Start: kw.Span.Start, End: name.Span.End})
	fn.Name = name.Text
	fn.NameSpan = name.Span

	p.expect(TokenLParen, "'('")
	for !p.at(TokenRParen) && !p.at(TokenEOF) && !p.at(TokenLBrace) {
		fn.addChild(p.parseParameter())
		if _, ok := p.eat(TokenComma); !ok {
			break
		}
	}
	rparen := p.expect(TokenRParen, "')'")
	fn.Span.End = rparen.Span.End

	if _, ok := p.eat(TokenArrow); ok {
		if ret := p.parseTypeRef(); ret != nil {
			fn.addChild(ret)
			fn.Span.End = ret.Span.End
		}
	}

	body := p.parseBlock()
	fn.addChild(body)
	fn.Span.End = body.Span.End
	return fn
}

// parseParameter parses "label name: Type" or "name: Type". A label of "_"
// marks the parameter as unlabeled at call sites.
func (p *parser) parseParameter() *Node {
	first := p.expect(TokenIdent, "parameter name")
	param := p.newNode(KindParameterDecl, first.Span)
	if p.at(TokenIdent) {
		// Two identifiers: external label then internal name.
		name := p.advance()
		param.Label = first.Text
		param.Name = name.Text
		param.NameSpan = name.Span
		param.Span.End = name.Span.End
	} else {
		param.Name = first.Text
		param.NameSpan = first.Span
	}
	p.expect(TokenColon, "':'")
	if tr := p.parseTypeRef(); tr != nil {
		param.addChild(tr)
		param.Span.End = tr.Span.End
	}
	return param
}

func (p *parser) parseLetDecl() *Node {
	kw := p.expect(TokenLet, "'let'")
	name := p.expect(TokenIdent, "binding name")
	let := p.newNode(KindLetDecl, Span{Start: kw.Span.Start, End: name.Span.End})
	let.Name = name.Text
	let.NameSpan = name.Span
	if _, ok := p.eat(TokenColon); ok {
		if tr := p.parseTypeRef(); tr != nil {
			let.addChild(tr)
			let.Span.End = tr.Span.End
		}
	}
	p.expect(TokenAssign, "'='")
	if init := p.parseExpr(); init != nil {
		let.addChild(init)
		let.Span.End = init.Span.End
	}
	return let
}

func (p *parser) parseTypeDecl() *Node {
	kw := p.expect(TokenType, "'type'")
	name := p.expect(TokenIdent, "type name")
	decl := p.newNode(KindTypeDecl, Span{Start: kw.Span.Start, End: name.Span.End})
	decl.Name = name.Text
	decl.NameSpan = name.Span
	return decl
}

func (p *parser) parseTypeRef() *Node {
	name, ok := p.eat(TokenIdent)
	if !ok {
		p.errf(p.cur().Span, "parse/expected", "expected type name")
		return nil
	}
	tr := p.newNode(KindTypeRef, name.Span)
	tr.Name = name.Text
	tr.NameSpan = name.Span
	return tr
}

func (p *parser) parseBlock() *Node {
	lbrace := p.expect(TokenLBrace, "'{'")
	block := p.newNode(KindBlock, lbrace.Span)
	for !p.at(TokenRBrace) && !p.at(TokenEOF) {
		before := p.pos
		block.addChild(p.parseDecl())
		if p.pos == before {
			t := p.advance()
			p.errf(t.Span, "parse/unexpected-token", "unexpected %q", t.Text)
		}
	}
	if rbrace, ok := p.eat(TokenRBrace); ok {
		block.Span.End = rbrace.Span.End
	} else {
		p.errf(p.cur().Span, "parse/expected", "expected '}'")
		block.Span.End = p.cur().Span.Start
	}
	return block
}

func (p *parser) parseStmt() *Node {
	switch p.cur().Kind {
	case TokenReturn:
		kw := p.advance()
		ret := p.newNode(KindReturnStmt, kw.Span)
		if !p.at(TokenRBrace) && !p.at(TokenEOF) && startsExpr(p.cur().Kind) {
			if val := p.parseExpr(); val != nil {
				ret.addChild(val)
				ret.Span.End = val.Span.End
			}
		}
		return ret
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		kw := p.advance()
		loop := p.newNode(KindWhileStmt, kw.Span)
		if cond := p.parseExpr(); cond != nil {
			loop.addChild(cond)
		}
		body := p.parseBlock()
		loop.addChild(body)
		loop.Span.End = body.Span.End
		return loop
	default:
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		stmt := p.newNode(KindExprStmt, expr.Span)
		stmt.addChild(expr)
		return stmt
	}
}

func (p *parser) parseIf() *Node {
	kw := p.expect(TokenIf, "'if'")
	stmt := p.newNode(KindIfStmt, kw.Span)
	if cond := p.parseExpr(); cond != nil {
		stmt.addChild(cond)
	}
	body := p.parseBlock()
	stmt.addChild(body)
	stmt.Span.End = body.Span.End
	if _, ok := p.eat(TokenElse); ok {
		var alt *Node
		if p.at(TokenIf) {
			alt = p.parseIf()
		} else {
			alt = p.parseBlock()
		}
		stmt.addChild(alt)
		stmt.Span.End = alt.Span.End
	}
	return stmt
}

func startsExpr(k TokenKind) bool {
	switch k {
	case TokenIdent, TokenInt, TokenString, TokenTrue, TokenFalse, TokenLParen:
		return true
	default:
		return false
	}
}

// Expression grammar, loosest binding first:
// comparison (< > == !=) -> additive (+ -) -> multiplicative (* /) -> postfix.
func (p *parser) parseExpr() *Node {
	return p.parseBinary(0)
}

var binaryLevels = [][]TokenKind{
	{TokenLess, TokenGreater, TokenEqEq, TokenBangEq},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash},
}

func (p *parser) parseBinary(level int) *Node {
	if level >= len(binaryLevels) {
		return p.parsePostfix()
	}
	left := p.parseBinary(level + 1)
	if left == nil {
		return nil
	}
	for {
		matched := false
		for _, kind := range binaryLevels[level] {
			if !p.at(kind) {
				continue
			}
			op := p.advance()
			right := p.parseBinary(level + 1)
			bin := p.newNode(KindBinaryExpr, Span{Start: left.Span.Start, End: op.Span.End})
			bin.Op = op.Text
			bin.addChild(left)
			if right != nil {
				bin.addChild(right)
				bin.Span.End = right.Span.End
			} else {
				p.errf(op.Span, "parse/expected", "expected operand after %q", op.Text)
			}
			left = bin
			matched = true
			break
		}
		if !matched {
			return left
		}
	}
}

func (p *parser) parsePostfix() *Node {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch {
		case p.at(TokenLParen):
			p.advance()
			call := p.newNode(KindCallExpr, Span{Start: expr.Span.Start, End: expr.Span.End})
			call.addChild(expr)
			for !p.at(TokenRParen) && !p.at(TokenEOF) {
				if arg := p.parseExpr(); arg != nil {
					call.addChild(arg)
				}
				if _, ok := p.eat(TokenComma); !ok {
					break
				}
			}
			rparen := p.expect(TokenRParen, "')'")
			if rparen.Span.End > call.Span.End {
				call.Span.End = rparen.Span.End
			}
			expr = call
		case p.at(TokenDot):
			p.advance()
			name := p.expect(TokenIdent, "member name")
			member := p.newNode(KindMemberExpr, Span{Start: expr.Span.Start, End: name.Span.End})
			member.Name = name.Text
			member.NameSpan = name.Span
			member.addChild(expr)
			expr = member
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimary() *Node {
	t := p.cur()
	switch t.Kind {
	case TokenIdent:
		p.advance()
		name := p.newNode(KindNameExpr, t.Span)
		name.Name = t.Text
		name.NameSpan = t.Span
		return name
	case TokenInt:
		p.advance()
		return p.newNode(KindIntLiteral, t.Span)
	case TokenString:
		p.advance()
		return p.newNode(KindStringLiteral, t.Span)
	case TokenTrue, TokenFalse:
		p.advance()
		lit := p.newNode(KindBoolLiteral, t.Span)
		lit.Name = t.Text
		return lit
	case TokenLParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(TokenRParen, "')'")
		return inner
	default:
		return nil
	}
}
