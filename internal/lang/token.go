package lang

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenString
	TokenComment

	// Keywords.
	TokenFun
	TokenLet
	TokenType
	TokenReturn
	TokenIf
	TokenElse
	TokenWhile
	TokenTrue
	TokenFalse

	// Punctuation and operators.
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenColon
	TokenArrow
	TokenAssign
	TokenDot
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenLess
	TokenGreater
	TokenEqEq
	TokenBangEq
)

var keywords = map[string]TokenKind{
	"fun":    TokenFun,
	"let":    TokenLet,
	"type":   TokenType,
	"return": TokenReturn,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// IsKeyword reports whether the token kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenFun && k <= TokenFalse
}

// Token is one lexical token with its source span.
type Token struct {
	Kind TokenKind
	Span Span
	Text string
}

// Lex splits the container's text into tokens. Unknown bytes are reported as
// diagnostics and skipped; lexing never fails. Comments are kept in the token
// stream (the parser skips them, semantic tokens use them).
func Lex(c *SourceContainer) ([]Token, []Diagnostic) {
	var (
		tokens []Token
		diags  []Diagnostic
	)
	src := c.Text
	i := 0
	emit := func(kind TokenKind, start, end int) {
		tokens = append(tokens, Token{Kind: kind, Span: Span{Start: start, End: end}, Text: src[start:end]})
	}
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			i++
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			start := i
			for i < len(src) && src[i] != '\n' {
				i++
			}
			emit(TokenComment, start, i)
		case isIdentStart(ch):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if kw, ok := keywords[word]; ok {
				emit(kw, start, i)
			} else {
				emit(TokenIdent, start, i)
			}
		case ch >= '0' && ch <= '9':
			start := i
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
			emit(TokenInt, start, i)
		case ch == '"':
			start := i
			i++
			for i < len(src) && src[i] != '"' && src[i] != '\n' {
				if src[i] == '\\' && i+1 < len(src) {
					i++
				}
				i++
			}
			if i < len(src) && src[i] == '"' {
				i++
			} else {
				diags = append(diags, errDiag(c, Span{Start: start, End: i},
					"lex/unterminated-string", "unterminated string literal"))
			}
			emit(TokenString, start, i)
		default:
			if kind, width := lexOperator(src, i); kind != TokenEOF {
				emit(kind, i, i+width)
				i += width
				continue
			}
			diags = append(diags, errDiag(c, Span{Start: i, End: i + 1},
				"lex/unexpected-byte", "unexpected character "+string(rune(ch))))
			i++
		}
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Span: Span{Start: len(src), End: len(src)}})
	return tokens, diags
}

// lexOperator matches a punctuation or operator token at src[i].
// Returns TokenEOF when nothing matches.
func lexOperator(src string, i int) (TokenKind, int) {
	two := ""
	if i+2 <= len(src) {
		two = src[i : i+2]
	}
	switch two {
	case "->":
		return TokenArrow, 2
	case "==":
		return TokenEqEq, 2
	case "!=":
		return TokenBangEq, 2
	}
	switch src[i] {
	case '(':
		return TokenLParen, 1
	case ')':
		return TokenRParen, 1
	case '{':
		return TokenLBrace, 1
	case '}':
		return TokenRBrace, 1
	case ',':
		return TokenComma, 1
	case ':':
		return TokenColon, 1
	case '=':
		return TokenAssign, 1
	case '.':
		return TokenDot, 1
	case '+':
		return TokenPlus, 1
	case '-':
		return TokenMinus, 1
	case '*':
		return TokenStar, 1
	case '/':
		return TokenSlash, 1
	case '<':
		return TokenLess, 1
	case '>':
		return TokenGreater, 1
	}
	return TokenEOF, 0
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
