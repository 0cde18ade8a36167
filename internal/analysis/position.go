package analysis

import "github.com/mica-lang/micals/internal/lang"

// Protocol positions are 0-based line/character; the frontend's native
// positions are 1-based. The mapping is a strict +1/-1 in both directions.

// OffsetForPosition converts a protocol position to a byte offset in the
// container. Returns false when the position does not resolve (line beyond
// end of file, character beyond end of line).
func OffsetForPosition(c *lang.SourceContainer, pos LineCol) (int, bool) {
	return c.OffsetFor(lang.Position{
		Line:   int(pos.Line) + 1,
		Column: int(pos.Character) + 1,
	})
}

// PositionForOffset converts a byte offset to a protocol position.
func PositionForOffset(c *lang.SourceContainer, offset int) LineCol {
	native := c.PositionFor(offset)
	return LineCol{
		Line:      uint32(native.Line - 1),
		Character: uint32(native.Column - 1),
	}
}

// RangeForSpan converts a byte span to a protocol start/end position pair
// (end-exclusive, per the protocol range convention).
func RangeForSpan(c *lang.SourceContainer, span lang.Span) (LineCol, LineCol) {
	return PositionForOffset(c, span.Start), PositionForOffset(c, span.End)
}
