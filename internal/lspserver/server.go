// Package lspserver implements the Language Server Protocol server for Mica.
//
// The server answers go-to-definition, hover, references, rename, document
// symbols, document highlight, semantic tokens, and completion, and pushes
// diagnostics on every document change. All features read through the
// analysis store, which keeps each document paired with a program compiled
// from its latest text.
//
// Transport: stdio only (--stdio) for v1.
// Protocol: LSP 3.16 types via go.lsp.dev/protocol, JSON-RPC via go.lsp.dev/jsonrpc2.
package lspserver

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/mica-lang/micals/internal/analysis"
	"github.com/mica-lang/micals/internal/config"
	"github.com/mica-lang/micals/internal/version"
)

const serverName = "micals"

// Server is the micals LSP server.
type Server struct {
	conn  jsonrpc2.Conn
	store *analysis.Store
	log   *logrus.Entry
}

// New creates a new LSP server from the resolved configuration.
func New(cfg *config.Config) *Server {
	log := logrus.WithField("component", "lsp")
	if cfg == nil {
		cfg = config.Default()
	}
	return &Server{
		store: analysis.NewStore(cfg.StdlibRoot, log),
		log:   log,
	}
}

// RunStdio starts the LSP server on stdin/stdout.
// It blocks until the connection is closed or the context is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	stream := jsonrpc2.NewStream(stdioReadWriteCloser{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, jsonrpc2.AsyncHandler(jsonrpc2.ReplyHandler(s.handle)))

	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.Done():
		return conn.Err()
	}
}

// handle dispatches incoming JSON-RPC messages to the appropriate handler.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	// Lifecycle
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		return s.conn.Close()
	case protocol.MethodSetTrace:
		return reply(ctx, nil, nil)

	// Document sync
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidSave:
		return s.handleDidSave(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(ctx, reply, req)

	// Language features
	case protocol.MethodTextDocumentDefinition:
		return s.handleDefinition(ctx, reply, req)
	case protocol.MethodTextDocumentHover:
		return s.handleHover(ctx, reply, req)
	case protocol.MethodTextDocumentReferences:
		return s.handleReferences(ctx, reply, req)
	case protocol.MethodTextDocumentDocumentHighlight:
		return s.handleDocumentHighlight(ctx, reply, req)
	case protocol.MethodTextDocumentRename:
		return s.handleRename(ctx, reply, req)
	case protocol.MethodTextDocumentDocumentSymbol:
		return s.handleDocumentSymbol(ctx, reply, req)
	case protocol.MethodTextDocumentCompletion:
		return s.handleCompletion(ctx, reply, req)
	case protocol.MethodSemanticTokensFull:
		return s.handleSemanticTokensFull(ctx, reply, req)

	// Workspace
	case protocol.MethodWorkspaceDidChangeConfiguration:
		return reply(ctx, nil, nil)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// semanticTokensOptions describes the semantic tokens capability. Declared
// locally so the legend's token order stays next to the encoder using it.
type semanticTokensOptions struct {
	Legend semanticTokensLegend `json:"legend"`
	Full   bool                 `json:"full"`
}

type semanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// handleInitialize records workspace roots and responds with server
// capabilities. Initialization is idempotent and does not touch documents.
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.log.Infof("initialize from %s", clientInfoString(params.ClientInfo))

	var folders []analysis.AbsoluteURL
	for _, f := range params.WorkspaceFolders {
		if u, err := analysis.ParseURL(f.URI); err == nil {
			folders = append(folders, u)
		}
	}
	var root analysis.AbsoluteURL
	if params.RootURI != "" {
		if u, err := analysis.ParseURL(string(params.RootURI)); err == nil {
			root = u
		}
	}
	s.store.Initialize(root, folders)

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
			DefinitionProvider:        true,
			HoverProvider:             true,
			ReferencesProvider:        true,
			DocumentHighlightProvider: true,
			RenameProvider:            true,
			DocumentSymbolProvider:    true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
			},
			SemanticTokensProvider: semanticTokensOptions{
				Legend: semanticTokensLegend{
					TokenTypes:     tokenTypeLegend,
					TokenModifiers: []string{},
				},
				Full: true,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.Version(),
		},
	}

	return reply(ctx, result, nil)
}

// replyParseError sends a JSON-RPC parse error.
func replyParseError(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.ParseError, "invalid params: %v", err))
}

// clientInfoString formats client info for logging.
func clientInfoString(info *protocol.ClientInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

// stdioReadWriteCloser wraps stdin/stdout as an io.ReadWriteCloser for JSON-RPC.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
