// Package lang implements the Mica compiler frontend: lexer, error-tolerant
// parser, scope assignment, and type assignment, exposed through the Program
// model. All stages collect diagnostics instead of failing, so callers always
// get back as much of a compiled representation as the source allowed.
package lang

import "sort"

// Span is a half-open byte range [Start, End) within one source container.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the byte offset lies within the span.
// The end offset is treated as inside so that a cursor placed immediately
// after the last character of a token still hits it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Position is a 1-based line/column pair. Column counts bytes from the start
// of the line, with the first byte at column 1.
type Position struct {
	Line   int
	Column int
}

// SourceContainer holds one source buffer and its line index.
type SourceContainer struct {
	// URL is the normalized absolute URL of the backing file.
	URL string
	// Text is the full source text.
	Text string

	// lineOffsets[i] is the byte offset of the first byte of line i+1.
	lineOffsets []int
}

// NewSourceContainer builds a container and its line index.
func NewSourceContainer(url, text string) *SourceContainer {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &SourceContainer{URL: url, Text: text, lineOffsets: offsets}
}

// LineCount returns the number of lines in the container. An empty buffer
// has one (empty) line.
func (c *SourceContainer) LineCount() int {
	return len(c.lineOffsets)
}

// OffsetFor converts a 1-based line/column pair to a byte offset.
// Column may point one past the last byte of a line (the newline itself or,
// on the last line, end of file). Returns false if the pair does not resolve
// to a valid offset.
func (c *SourceContainer) OffsetFor(pos Position) (int, bool) {
	if pos.Line < 1 || pos.Line > len(c.lineOffsets) || pos.Column < 1 {
		return 0, false
	}
	start := c.lineOffsets[pos.Line-1]
	end := len(c.Text)
	if pos.Line < len(c.lineOffsets) {
		end = c.lineOffsets[pos.Line] - 1 // exclude the newline byte
	}
	offset := start + pos.Column - 1
	if offset > end {
		return 0, false
	}
	return offset, true
}

// PositionFor converts a byte offset to a 1-based line/column pair.
// Offsets are clamped to [0, len(Text)].
func (c *SourceContainer) PositionFor(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(c.Text) {
		offset = len(c.Text)
	}
	// Find the last line start at or before offset.
	line := sort.Search(len(c.lineOffsets), func(i int) bool {
		return c.lineOffsets[i] > offset
	})
	return Position{Line: line, Column: offset - c.lineOffsets[line-1] + 1}
}

// Snippet returns the source text covered by a span, clamped to the buffer.
func (c *SourceContainer) Snippet(span Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(c.Text) {
		end = len(c.Text)
	}
	if start >= end {
		return ""
	}
	return c.Text[start:end]
}
