package analysis

import (
	"fmt"
	"strings"
)

// LineCol is a protocol-convention position: 0-based line, 0-based character
// counted in bytes from the line start.
type LineCol struct {
	Line      uint32
	Character uint32
}

// ChangeRange bounds an incremental edit, end-exclusive.
type ChangeRange struct {
	Start LineCol
	End   LineCol
}

// TextEdit is one content change from a didChange notification. A nil Range
// means full-document replacement.
type TextEdit struct {
	Range   *ChangeRange
	NewText string
}

// Document is an immutable-with-replacement value holding a document's
// identity, version, and full text. Edits produce a new Document.
type Document struct {
	URL     AbsoluteURL
	Version int32
	Text    string
}

// ApplyChanges applies a batch of edits in order and returns the resulting
// Document at the new version. Per the contentChanges ordering contract each
// ranged edit is resolved against the text as mutated by all prior edits in
// the batch. If any edit's range does not resolve, ErrInvalidChangeRange is
// returned and the original Document is unchanged.
func (d Document) ApplyChanges(version int32, changes []TextEdit) (Document, error) {
	text := d.Text
	// Seed for the position search: edits usually arrive in document order,
	// so the next range is found by continuing from the previous edit's
	// start line instead of rescanning from the top.
	seedLine := uint32(0)
	seedOffset := 0

	for i, change := range changes {
		if change.Range == nil {
			text = change.NewText
			seedLine, seedOffset = 0, 0
			continue
		}
		r := *change.Range
		start, startLineOffset, err := offsetAt(text, r.Start, seedLine, seedOffset)
		if err != nil {
			return d, fmt.Errorf("change %d: %w", i, err)
		}
		end, _, err := offsetAt(text, r.End, r.Start.Line, startLineOffset)
		if err != nil {
			return d, fmt.Errorf("change %d: %w", i, err)
		}
		if end < start {
			return d, fmt.Errorf("change %d: %w: end before start", i, ErrInvalidChangeRange)
		}
		text = text[:start] + change.NewText + text[end:]
		seedLine, seedOffset = r.Start.Line, startLineOffset
	}

	return Document{URL: d.URL, Version: version, Text: text}, nil
}

// offsetAt resolves a position to a byte offset, scanning newline boundaries
// forward from a known (line, line-start-offset) reference point. It returns
// the offset and the offset of the position's line start.
func offsetAt(text string, pos LineCol, fromLine uint32, fromLineOffset int) (int, int, error) {
	line, offset := fromLine, fromLineOffset
	if pos.Line < fromLine {
		line, offset = 0, 0
	}
	for line < pos.Line {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return 0, 0, fmt.Errorf("%w: line %d beyond end of file", ErrInvalidChangeRange, pos.Line)
		}
		offset += nl + 1
		line++
	}
	lineLen := strings.IndexByte(text[offset:], '\n')
	if lineLen < 0 {
		lineLen = len(text) - offset
	}
	if int(pos.Character) > lineLen {
		return 0, 0, fmt.Errorf("%w: character %d beyond end of line %d",
			ErrInvalidChangeRange, pos.Character, pos.Line)
	}
	return offset + int(pos.Character), offset, nil
}
