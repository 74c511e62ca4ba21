// Command typeck-lsp is a minimal language server exposing this module's
// diagnostics for a fixture file opened in an editor: open or change a
// document whose language id is "typeck-fixture" and the server parses it
// (the same YAML shape cmd/typeck-fixture reads), runs the typecheck
// pipeline, and publishes whatever diag.Error values came back.
//
// Grounded on cmd/lsp-server/main.go's server bootstrap (glsp_server.NewServer
// + protocol.Handler wiring + didOpen/didChange -> validate -> publish); the
// rest of that file's surface (declaration/definition lookups, workspace
// execute-command compile action) has no analogue here since this module
// never builds a symbol table or produces compiled output, so only the
// diagnostics-publishing slice is carried forward.
package main

import (
	"fmt"
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glsp_server "github.com/tliron/glsp/server"
)

const lsName = "typeck-lsp"
const languageID = "typeck-fixture"

var version string = "0.0.1"

func main() {
	fmt.Fprintf(os.Stderr, "typeck-lsp starting\n")

	server := glsp_server.NewServer(NewServer(), lsName, false)
	if err := server.RunStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

type Server struct {
	handler   protocol.Handler
	documents map[protocol.DocumentUri]string
}

func NewServer() *Server {
	s := &Server{documents: map[protocol.DocumentUri]string{}}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
	}
	return s
}

func (s *Server) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	return s.handler.Handle(context)
}

func (s *Server) initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (*Server) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (*Server) shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) textDocumentDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.documents[params.TextDocument.URI] = params.TextDocument.Text
	if params.TextDocument.LanguageID == languageID {
		s.validate(context, params.TextDocument.URI, params.TextDocument.Text)
	}
	return nil
}

func (s *Server) textDocumentDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		whole, ok := change.(protocol.TextDocumentContentChangeEventWhole)
		if !ok {
			return fmt.Errorf("typeck-lsp: incremental changes not supported")
		}
		s.documents[params.TextDocument.URI] = whole.Text
		s.validate(context, params.TextDocument.URI, whole.Text)
	}
	return nil
}

// validate parses contents as a fixture, typechecks it, and publishes one
// diagnostic per diag.Error. A parse failure is reported as a single
// diagnostic at the document's start rather than dropped silently.
func (s *Server) validate(lspContext *glsp.Context, uri protocol.DocumentUri, contents string) {
	diagnostics, err := diagnosticsFor(contents)
	if err != nil {
		diagnostics = []protocol.Diagnostic{fixtureParseDiagnostic(err)}
	}

	go lspContext.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func fixtureParseDiagnostic(err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	message := err.Error()
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: 0, Character: 0},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}
