package lsp

import (
	"context"
	"encoding/json"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/0muji4/xmldef/internal/workspace"
)

// ContentMethod is the custom request an editor sends to render a
// virtual definition document.
const ContentMethod = "xmldef/content"

// ContentParams are the parameters of ContentMethod.
type ContentParams struct {
	URI string `json:"uri"`
}

var logger = commonlog.GetLogger("xmldef.lsp")

var _ glsp.Handler = (*Server)(nil)

// Server is a language server answering textDocument/definition for XML
// documents it is kept in sync with.
type Server struct {
	name    string
	version string
	finder  DefinitionFinder
	schemas SchemaReloader
	docs    *workspace.Store
	handler protocol.Handler
}

// NewServer returns a server; schemas may be nil when reloads are not wanted.
func NewServer(name, version string, finder DefinitionFinder, schemas SchemaReloader) *Server {
	s := &Server{
		name:    name,
		version: version,
		finder:  finder,
		schemas: schemas,
		docs:    workspace.NewStore(),
	}
	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.didOpen,
		TextDocumentDidChange:          s.didChange,
		TextDocumentDidClose:           s.didClose,
		TextDocumentDefinition:         s.definition,
		WorkspaceDidChangeWatchedFiles: s.didChangeWatchedFiles,
	}
	return s
}

// Handle dispatches ContentMethod itself and everything else to the
// protocol handler.
func (s *Server) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if context.Method != ContentMethod {
		return s.handler.Handle(context)
	}
	var params ContentParams
	if err := json.Unmarshal(context.Params, &params); err != nil {
		return nil, true, false, err
	}
	text, err := s.content(&params)
	return text, true, true, err
}

// RunStdio serves the protocol over stdin/stdout until the client exits.
func (s *Server) RunStdio() error {
	return glspserver.NewServer(s, s.name, false).RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull
	if params.ClientInfo != nil {
		logger.Infof("client: %s", params.ClientInfo.Name)
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.Put(string(params.TextDocument.URI), params.TextDocument.Text)
	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	text, _ := s.docs.Get(uri)
	for _, change := range params.ContentChanges {
		switch actual := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = actual.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, actual)
		}
	}
	s.docs.Put(uri, text)
	return nil
}

func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.Delete(string(params.TextDocument.URI))
	return nil
}

func (s *Server) definition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	text, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	result, err := s.finder.FindAt(context.Background(), text, int(params.Position.Line), int(params.Position.Character))
	if err != nil {
		// Not navigable: unsupported position or nothing under the cursor.
		logger.Debugf("definition %s %d:%d: %s", params.TextDocument.URI, params.Position.Line, params.Position.Character, err)
		return nil, nil
	}
	position := protocol.Position{
		Line:      protocol.UInteger(result.Line),
		Character: protocol.UInteger(result.Column),
	}
	return protocol.Location{
		URI:   protocol.DocumentUri(result.URI),
		Range: protocol.Range{Start: position, End: position},
	}, nil
}

func (s *Server) didChangeWatchedFiles(_ *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	if s.schemas == nil {
		return nil
	}
	for _, change := range params.Changes {
		if !s.schemas.Watches(string(change.URI)) {
			continue
		}
		logger.Infof("schema changed: %s", change.URI)
		if err := s.schemas.Reload(context.Background()); err != nil {
			logger.Errorf("reload schemas: %s", err)
		}
		return nil
	}
	return nil
}

func (s *Server) content(params *ContentParams) (string, error) {
	return s.finder.Content(context.Background(), params.URI)
}

// applyChange applies an incremental edit; positions are UTF-16 based.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}
	start := workspace.OffsetAt(text, int(change.Range.Start.Line), int(change.Range.Start.Character))
	end := workspace.OffsetAt(text, int(change.Range.End.Line), int(change.Range.End.Character))
	if end < start {
		start, end = end, start
	}
	return text[:start] + change.Text + text[end:]
}
