package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseText(t *testing.T, text string) (*Node, []Diagnostic) {
	t.Helper()
	c := NewSourceContainer("file:///test.mica", text)
	return Parse(c)
}

func TestParseFunctionDecl(t *testing.T) {
	t.Parallel()

	root, diags := parseText(t, "fun add(_ a: Int, _ b: Int) -> Int {\n    return a + b\n}\n")
	require.Empty(t, diags)
	require.Len(t, root.Children, 1)

	fn := root.Children[0]
	assert.Equal(t, KindFunctionDecl, fn.Kind)
	assert.Equal(t, "add", fn.Name)

	params := fn.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "_", params[0].Label)
	assert.Equal(t, "a", params[0].Name)
	require.NotNil(t, params[0].TypeAnnotation())
	assert.Equal(t, "Int", params[0].TypeAnnotation().Name)

	require.NotNil(t, fn.ResultTypeRef())
	assert.Equal(t, "Int", fn.ResultTypeRef().Name)
	require.NotNil(t, fn.Body())
	require.Len(t, fn.Body().Children, 1)
	assert.Equal(t, KindReturnStmt, fn.Body().Children[0].Kind)
}

func TestParseLabeledParameter(t *testing.T) {
	t.Parallel()

	root, diags := parseText(t, "fun greet(name s: String) {\n}\n")
	require.Empty(t, diags)

	params := root.Children[0].Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "name", params[0].Label)
	assert.Equal(t, "s", params[0].Name)
}

func TestParseExpressionPrecedence(t *testing.T) {
	t.Parallel()

	// a + b * c parses as a + (b * c).
	root, diags := parseText(t, "let x = a + b * c\n")
	require.Empty(t, diags)

	let := root.Children[0]
	require.Equal(t, KindLetDecl, let.Kind)
	sum := let.Initializer()
	require.NotNil(t, sum)
	require.Equal(t, KindBinaryExpr, sum.Kind)
	assert.Equal(t, "+", sum.Op)
	require.Len(t, sum.Children, 2)
	assert.Equal(t, KindNameExpr, sum.Children[0].Kind)
	assert.Equal(t, "*", sum.Children[1].Op)
}

func TestParseCallAndMemberChain(t *testing.T) {
	t.Parallel()

	root, diags := parseText(t, "let x = a.b.c\n")
	require.Empty(t, diags)

	member := root.Children[0].Initializer()
	require.Equal(t, KindMemberExpr, member.Kind)
	assert.Equal(t, "c", member.Name)
	inner := member.Children[0]
	require.Equal(t, KindMemberExpr, inner.Kind)
	assert.Equal(t, "b", inner.Name)
	assert.Equal(t, KindNameExpr, inner.Children[0].Kind)
}

func TestParseSpansNest(t *testing.T) {
	t.Parallel()

	text := "fun f() {\n    let x = 1\n}\n"
	root, diags := parseText(t, text)
	require.Empty(t, diags)

	assert.Equal(t, Span{Start: 0, End: len(text)}, root.Span)
	var check func(n *Node)
	check = func(n *Node) {
		for _, c := range n.Children {
			if n.Kind.IntroducesScope() {
				assert.GreaterOrEqual(t, c.Span.Start, n.Span.Start)
				assert.LessOrEqual(t, c.Span.End, n.Span.End)
			}
			check(c)
		}
	}
	check(root)
}

func TestParseTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "missing_rbrace", text: "fun f() {\n    let x = 1\n"},
		{name: "missing_paren", text: "fun f( {\n}\n"},
		{name: "garbage", text: "@@@@\nfun f() {\n}\n"},
		{name: "dangling_operator", text: "let x = 1 +\n"},
		{name: "unterminated_string", text: "let s = \"abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, diags := parseText(t, tt.text)
			require.NotNil(t, root, "malformed input must still yield a tree")
			assert.NotEmpty(t, diags)
		})
	}
}

func TestLexCommentsKept(t *testing.T) {
	t.Parallel()

	c := NewSourceContainer("file:///test.mica", "// hello\nlet x = 1\n")
	tokens, diags := Lex(c)
	require.Empty(t, diags)
	require.NotEmpty(t, tokens)
	assert.Equal(t, TokenComment, tokens[0].Kind)
	assert.Equal(t, "// hello", tokens[0].Text)
}
