// Package analysis implements the document/program cache and
// position-resolution engine behind the micals language server: per-URI
// document state, compiled Mica programs kept consistent with edits, and the
// node/declaration resolution primitives every LSP feature reads through.
package analysis

import "errors"

var (
	// ErrInvalidURI reports a URI string that does not parse as an absolute
	// URI with a scheme.
	ErrInvalidURI = errors.New("invalid uri")

	// ErrDocumentNotOpened reports an operation on a URI that is neither
	// open nor readable from disk.
	ErrDocumentNotOpened = errors.New("document not opened")

	// ErrInvalidChangeRange reports an incremental edit whose range does not
	// resolve against the current document text.
	ErrInvalidChangeRange = errors.New("invalid change range")
)
