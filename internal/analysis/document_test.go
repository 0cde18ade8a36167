package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edit(startLine, startChar, endLine, endChar uint32, text string) TextEdit {
	return TextEdit{
		Range: &ChangeRange{
			Start: LineCol{Line: startLine, Character: startChar},
			End:   LineCol{Line: endLine, Character: endChar},
		},
		NewText: text,
	}
}

func TestApplyChangesSingleEdit(t *testing.T) {
	t.Parallel()

	doc := Document{Text: "fun foo(_ n: Int) -> Int {\n    return n\n}\n", Version: 1}

	// Replace "foo" with "bar".
	got, err := doc.ApplyChanges(2, []TextEdit{edit(0, 4, 0, 7, "bar")})
	require.NoError(t, err)
	assert.Equal(t, "fun bar(_ n: Int) -> Int {\n    return n\n}\n", got.Text)
	assert.Equal(t, int32(2), got.Version)

	// The original document is untouched.
	assert.Equal(t, int32(1), doc.Version)
	assert.Contains(t, doc.Text, "foo")
}

func TestApplyChangesFullReplacement(t *testing.T) {
	t.Parallel()

	doc := Document{Text: "old\n"}
	got, err := doc.ApplyChanges(2, []TextEdit{{NewText: "entirely new\n"}})
	require.NoError(t, err)
	assert.Equal(t, "entirely new\n", got.Text)
}

func TestApplyChangesSequentialAgainstMutatedText(t *testing.T) {
	t.Parallel()

	// The second edit's range is valid only in the text produced by the
	// first edit.
	doc := Document{Text: "ab\n"}
	got, err := doc.ApplyChanges(2, []TextEdit{
		edit(0, 1, 0, 1, "xyz"), // "axyzb"
		edit(0, 4, 0, 5, "B"),   // replace the b
	})
	require.NoError(t, err)
	assert.Equal(t, "axyzB\n", got.Text)
}

func TestApplyChangesInsertionAtEOF(t *testing.T) {
	t.Parallel()

	doc := Document{Text: "let x = 1"}
	got, err := doc.ApplyChanges(2, []TextEdit{edit(0, 9, 0, 9, "\nlet y = 2")})
	require.NoError(t, err)
	assert.Equal(t, "let x = 1\nlet y = 2", got.Text)
}

func TestApplyChangesLaterThenEarlierLine(t *testing.T) {
	t.Parallel()

	// Edits out of document order force the search to restart from the top.
	doc := Document{Text: "one\ntwo\nthree\n"}
	got, err := doc.ApplyChanges(2, []TextEdit{
		edit(2, 0, 2, 5, "THREE"),
		edit(0, 0, 0, 3, "ONE"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ONE\ntwo\nTHREE\n", got.Text)
}

func TestApplyChangesInvalidRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		edits []TextEdit
	}{
		{name: "line_beyond_eof", edits: []TextEdit{edit(5, 0, 5, 1, "x")}},
		{name: "char_beyond_line", edits: []TextEdit{edit(0, 10, 0, 11, "x")}},
		{name: "end_before_start", edits: []TextEdit{edit(1, 1, 0, 0, "x")}},
		{
			name: "second_edit_bad",
			edits: []TextEdit{
				edit(0, 0, 0, 1, "y"),
				edit(9, 0, 9, 0, "x"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Document{Text: "abc\ndef\n", Version: 1}
			got, err := doc.ApplyChanges(2, tt.edits)
			require.ErrorIs(t, err, ErrInvalidChangeRange)
			// All-or-nothing: the document is returned unchanged.
			assert.Equal(t, doc.Text, got.Text)
			assert.Equal(t, int32(1), got.Version)
		})
	}
}
