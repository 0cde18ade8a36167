package lspserver

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
)

// didChangeParams mirrors protocol.DidChangeTextDocumentParams with an
// optional Range per change, so a full-document replacement (range absent)
// is distinguishable from an insertion at the file start.
type didChangeParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                          `json:"contentChanges"`
}

type contentChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

// handleDidOpen registers the opened document and publishes diagnostics.
func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	url, err := analysis.ParseURL(string(params.TextDocument.URI))
	if err != nil {
		return replyInvalidParams(ctx, reply, err)
	}

	docCtx := s.store.RegisterDocument(url, params.TextDocument.Version, params.TextDocument.Text)
	s.publishDiagnostics(ctx, docCtx)
	return reply(ctx, nil, nil)
}

// handleDidChange applies the batch of content changes, waits for the
// rebuild, and publishes fresh diagnostics. A change batch that does not
// resolve leaves the document at its last good state.
func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params didChangeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	url, err := analysis.ParseURL(string(params.TextDocument.URI))
	if err != nil {
		return replyInvalidParams(ctx, reply, err)
	}

	edits := make([]analysis.TextEdit, len(params.ContentChanges))
	for i, change := range params.ContentChanges {
		edits[i] = analysis.TextEdit{NewText: change.Text}
		if change.Range != nil {
			edits[i].Range = &analysis.ChangeRange{
				Start: fromProtocolPosition(change.Range.Start),
				End:   fromProtocolPosition(change.Range.End),
			}
		}
	}

	docCtx, err := s.store.UpdateDocument(url, params.TextDocument.Version, edits)
	if err != nil {
		s.log.WithField("uri", url.String()).WithError(err).Warn("didChange failed")
		return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InternalError, "update document: %v", err))
	}
	s.publishDiagnostics(ctx, docCtx)
	return reply(ctx, nil, nil)
}

// handleDidSave re-registers from the saved text when the client includes
// it, then re-publishes diagnostics.
func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	url, err := analysis.ParseURL(string(params.TextDocument.URI))
	if err != nil {
		return replyInvalidParams(ctx, reply, err)
	}

	if params.Text != "" {
		docCtx, err := s.store.UpdateDocument(url, 0, []analysis.TextEdit{{NewText: params.Text}})
		if err == nil {
			s.publishDiagnostics(ctx, docCtx)
			return reply(ctx, nil, nil)
		}
		// Saved before opened: fall through to a plain context fetch.
		s.log.WithField("uri", url.String()).WithError(err).Debug("didSave for unopened document")
	}
	if docCtx, err := s.store.DocumentContext(url); err == nil {
		s.publishDiagnostics(ctx, docCtx)
	}
	return reply(ctx, nil, nil)
}

// handleDidClose unregisters the document and clears its diagnostics.
func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	url, err := analysis.ParseURL(string(params.TextDocument.URI))
	if err != nil {
		return replyInvalidParams(ctx, reply, err)
	}

	s.store.UnregisterDocument(url)
	s.clearDiagnostics(ctx, params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

// replyInvalidParams sends a JSON-RPC invalid-params error.
func replyInvalidParams(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%v", err))
}
