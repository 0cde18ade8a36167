package lspserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mica-lang/micals/internal/analysis"
)

func TestEncodeSemanticTokensDeltaEncoding(t *testing.T) {
	t.Parallel()

	store := analysis.NewStore("", nil)
	url := analysis.URLFromPath("/tmp/micals-test/tokens.mica")
	ctx := store.RegisterDocument(url, 1, "// note\nlet count = 1\n")
	c := ctx.Program.ContainerFor(url.String())
	require.NotNil(t, c)

	data := encodeSemanticTokens(ctx.Program, c)

	// Quintuples: comment, "let" keyword, "count" variable, "1" number.
	require.Len(t, data, 20)
	assert.Equal(t, []uint32{0, 0, 7, tokComment, 0}, data[0:5])
	assert.Equal(t, []uint32{1, 0, 3, tokKeyword, 0}, data[5:10])
	assert.Equal(t, []uint32{0, 4, 5, tokVariable, 0}, data[10:15])
	assert.Equal(t, []uint32{0, 8, 1, tokNumber, 0}, data[15:20])
}

func TestEncodeSemanticTokensSkipsUnresolvedIdents(t *testing.T) {
	t.Parallel()

	store := analysis.NewStore("", nil)
	url := analysis.URLFromPath("/tmp/micals-test/unresolved.mica")
	ctx := store.RegisterDocument(url, 1, "let x = mystery\n")
	c := ctx.Program.ContainerFor(url.String())
	require.NotNil(t, c)

	data := encodeSemanticTokens(ctx.Program, c)
	// "let" keyword, "x" variable, "1" number is absent, and the unresolved
	// "mystery" produces nothing.
	require.Len(t, data, 10)
	assert.Equal(t, uint32(tokKeyword), data[3])
	assert.Equal(t, uint32(tokVariable), data[8])
}

func TestLegendMatchesEncoderIndexes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "keyword", tokenTypeLegend[tokKeyword])
	assert.Equal(t, "variable", tokenTypeLegend[tokVariable])
	assert.Equal(t, "type", tokenTypeLegend[tokType])
	assert.Equal(t, "comment", tokenTypeLegend[tokComment])
}
