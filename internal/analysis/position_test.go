package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mica-lang/micals/internal/lang"
)

func TestOffsetForPosition(t *testing.T) {
	t.Parallel()

	c := lang.NewSourceContainer("file:///t.mica", "let x = 1\nlet y = 2")

	tests := []struct {
		name string
		pos  LineCol
		want int
		ok   bool
	}{
		{name: "start_of_file", pos: LineCol{Line: 0, Character: 0}, want: 0, ok: true},
		{name: "mid_first_line", pos: LineCol{Line: 0, Character: 4}, want: 4, ok: true},
		{name: "end_of_first_line", pos: LineCol{Line: 0, Character: 9}, want: 9, ok: true},
		{name: "start_of_second_line", pos: LineCol{Line: 1, Character: 0}, want: 10, ok: true},
		{name: "end_of_file", pos: LineCol{Line: 1, Character: 9}, want: 19, ok: true},
		{name: "char_past_line_end", pos: LineCol{Line: 0, Character: 10}, ok: false},
		{name: "line_past_eof", pos: LineCol{Line: 2, Character: 0}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := OffsetForPosition(c, tt.pos)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPositionOffsetRoundTrip(t *testing.T) {
	t.Parallel()

	c := lang.NewSourceContainer("file:///t.mica", "fun f() {\n    return 1\n}\n")
	for offset := 0; offset <= len(c.Text); offset++ {
		pos := PositionForOffset(c, offset)
		got, ok := OffsetForPosition(c, pos)
		require.True(t, ok, "offset %d", offset)
		assert.Equal(t, offset, got, "offset %d", offset)
	}
}

func TestRangeForSpan(t *testing.T) {
	t.Parallel()

	c := lang.NewSourceContainer("file:///t.mica", "let x = 1\nlet y = 2\n")
	// Span of "y" on the second line.
	start, end := RangeForSpan(c, lang.Span{Start: 14, End: 15})
	assert.Equal(t, LineCol{Line: 1, Character: 4}, start)
	assert.Equal(t, LineCol{Line: 1, Character: 5}, end)
}
