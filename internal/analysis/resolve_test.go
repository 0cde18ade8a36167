package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mica-lang/micals/internal/lang"
)

// compile builds a document context for the text the way the server does.
func compile(t *testing.T, text string) (*DocumentContext, *lang.SourceContainer) {
	t.Helper()

	store := NewStore("", nil)
	url := URLFromPath("/tmp/micals-test/resolve.mica")
	ctx := store.RegisterDocument(url, 1, text)
	c := ctx.Program.ContainerFor(url.String())
	require.NotNil(t, c)
	return ctx, c
}

// offsetOf returns the byte offset of the nth occurrence (1-based) of needle.
func offsetOf(t *testing.T, text, needle string, nth int) int {
	t.Helper()

	offset := 0
	for i := 0; i < nth; i++ {
		idx := strings.Index(text[offset:], needle)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q", nth, needle)
		offset += idx + 1
	}
	return offset - 1
}

func TestFindNodeDeepestMatch(t *testing.T) {
	t.Parallel()

	text := "fun main() {\n    let v = a.b.c\n}\n"
	ctx, c := compile(t, text)

	// On "c": the outermost member expression, not its children.
	node := FindNode(ctx.Program, c, offsetOf(t, text, "c\n", 1))
	require.NotNil(t, node)
	assert.Equal(t, lang.KindMemberExpr, node.Kind)
	assert.Equal(t, "c", node.Name)

	// On "a": the name expression at the bottom of the chain.
	node = FindNode(ctx.Program, c, offsetOf(t, text, "a.b", 1))
	require.NotNil(t, node)
	assert.Equal(t, lang.KindNameExpr, node.Kind)
	assert.Equal(t, "a", node.Name)
}

func TestFindNodeAtDeclarationName(t *testing.T) {
	t.Parallel()

	text := "fun answer() -> Int {\n    return 42\n}\n"
	ctx, c := compile(t, text)

	node := FindNode(ctx.Program, c, offsetOf(t, text, "answer", 1))
	require.NotNil(t, node)
	assert.Equal(t, lang.KindFunctionDecl, node.Kind)
}

func TestFindNodeOutsideAnySpan(t *testing.T) {
	t.Parallel()

	text := "let x = 1\n"
	ctx, c := compile(t, text)

	assert.Nil(t, FindNode(ctx.Program, c, len(text)+10))

	// An unknown container yields nil, not a panic.
	other := lang.NewSourceContainer("file:///elsewhere.mica", "let y = 2\n")
	assert.Nil(t, FindNode(ctx.Program, other, 0))
}

func TestResolveDefinitionLocal(t *testing.T) {
	t.Parallel()

	text := "fun double(_ n: Int) -> Int {\n    return n + n\n}\nfun main() {\n    double(21)\n}\n"
	ctx, c := compile(t, text)

	node := FindNode(ctx.Program, c, offsetOf(t, text, "double(21)", 1))
	decl := ResolveDefinition(ctx.Program, node)
	require.NotNil(t, decl)
	assert.Equal(t, lang.KindFunctionDecl, decl.Kind)
	assert.Equal(t, "double", decl.Name)
	assert.Equal(t, offsetOf(t, text, "double", 1), decl.NameSpan.Start)
}

func TestResolveDefinitionCrossModule(t *testing.T) {
	t.Parallel()

	text := "fun main() {\n    println(\"hi\")\n}\n"
	ctx, c := compile(t, text)

	node := FindNode(ctx.Program, c, offsetOf(t, text, "println", 1))
	decl := ResolveDefinition(ctx.Program, node)
	require.NotNil(t, decl)
	assert.Equal(t, lang.PreludeURL, decl.Container.URL, "println lives in the prelude")
}

func TestResolveDefinitionNothingToJumpTo(t *testing.T) {
	t.Parallel()

	text := "fun main() {\n    let n = 42\n}\n"
	ctx, c := compile(t, text)

	// On the literal.
	node := FindNode(ctx.Program, c, offsetOf(t, text, "42", 1))
	assert.Nil(t, ResolveDefinition(ctx.Program, node))
	assert.Nil(t, ResolveDefinition(ctx.Program, nil))
}

func TestResolveSymbolAtDeclarationIsItself(t *testing.T) {
	t.Parallel()

	text := "fun answer() -> Int {\n    return 42\n}\n"
	ctx, c := compile(t, text)

	pos := PositionForOffset(c, offsetOf(t, text, "answer", 1))
	decl := ResolveSymbolAt(ctx.Program, c, pos)
	require.NotNil(t, decl)
	assert.Equal(t, "answer", decl.Name)
	assert.Equal(t, lang.KindFunctionDecl, decl.Kind)
}

func TestFindReferencesExcludesDeclaration(t *testing.T) {
	t.Parallel()

	text := "fun double(_ n: Int) -> Int {\n    return n + n\n}\nfun main() {\n    double(double(1))\n}\n"
	ctx, c := compile(t, text)

	decl := FindNode(ctx.Program, c, offsetOf(t, text, "double", 1))
	require.Equal(t, lang.KindFunctionDecl, decl.Kind)

	refs := FindReferences(ctx.Program, decl)
	SortReferences(refs)
	require.Len(t, refs, 2)
	assert.Equal(t, offsetOf(t, text, "double", 2), refs[0].Span.Start)
	assert.Equal(t, offsetOf(t, text, "double", 3), refs[1].Span.Start)
	for _, ref := range refs {
		assert.Same(t, c, ref.Container)
	}
}

func TestFindReferencesParameterScopedToFunction(t *testing.T) {
	t.Parallel()

	// Both functions name a parameter n; references must not bleed across.
	text := "fun f(_ n: Int) -> Int {\n    return n\n}\nfun g(_ n: Int) -> Int {\n    return n + n\n}\n"
	ctx, c := compile(t, text)

	param := FindNode(ctx.Program, c, offsetOf(t, text, "n:", 1))
	require.Equal(t, lang.KindParameterDecl, param.Kind)

	refs := FindReferences(ctx.Program, param)
	require.Len(t, refs, 1, "only f's return references f's parameter")
	assert.Equal(t, offsetOf(t, text, "return n", 1)+len("return "), refs[0].Span.Start)
}

func TestFindReferencesTypeRefs(t *testing.T) {
	t.Parallel()

	text := "fun f(_ a: Int, _ b: Int) -> Int {\n    return a\n}\n"
	ctx, c := compile(t, text)

	node := FindNode(ctx.Program, c, offsetOf(t, text, "Int", 1))
	require.Equal(t, lang.KindTypeRef, node.Kind)
	decl := ResolveDefinition(ctx.Program, node)
	require.NotNil(t, decl)
	require.Equal(t, lang.KindTypeDecl, decl.Kind)

	refs := FindReferences(ctx.Program, decl)
	count := 0
	for _, ref := range refs {
		if ref.Container == c {
			count++
		}
	}
	assert.Equal(t, 3, count, "all three Int annotations reference the prelude type")
}
