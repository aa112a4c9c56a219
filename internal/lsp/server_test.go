package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/workspace"
)

type stubFinder struct {
	calls []string
}

func (f *stubFinder) FindAt(_ context.Context, text string, line, character int) (location.Result, error) {
	offset := workspace.OffsetAt(text, line, character)
	word := workspace.WordAt(text, offset)
	f.calls = append(f.calls, word)
	if word == "" {
		return location.Result{}, errors.New("no word")
	}
	return location.NewEncoder("xmldef").Encode(nil, word), nil
}

func (f *stubFinder) Content(_ context.Context, identifier string) (string, error) {
	target, err := location.NewEncoder("xmldef").Decode(identifier)
	if err != nil {
		return "", err
	}
	return target.Diagnostic, nil
}

type stubReloader struct {
	watched string
	reloads int
}

func (r *stubReloader) Watches(uri string) bool { return uri == r.watched }

func (r *stubReloader) Reload(context.Context) error {
	r.reloads++
	return nil
}

const docURI = "file:///work/library.xml"

func definitionParams(line, character protocol.UInteger) *protocol.DefinitionParams {
	return &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
			Position:     protocol.Position{Line: line, Character: character},
		},
	}
}

func TestServer_Definition(t *testing.T) {
	finder := &stubFinder{}
	server := NewServer("xmldef", "test", finder, nil)
	ctx := &glsp.Context{}

	result, err := server.definition(ctx, definitionParams(0, 1))
	require.NoError(t, err)
	assert.Nil(t, result, "unknown document")

	require.NoError(t, server.didOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "xml", Version: 1, Text: "<library>\n  <book/>\n</library>"},
	}))

	result, err = server.definition(ctx, definitionParams(1, 4))
	require.NoError(t, err)
	loc, ok := result.(protocol.Location)
	require.True(t, ok)
	assert.Equal(t, uint32(0), uint32(loc.Range.Start.Line))

	text, err := server.content(&ContentParams{URI: string(loc.URI)})
	require.NoError(t, err)
	assert.Equal(t, "No definition found for 'book'", text)

	result, err = server.definition(ctx, definitionParams(1, 0))
	require.NoError(t, err)
	assert.Nil(t, result, "hard failures are not navigable")

	require.NoError(t, server.didClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}))
	result, err = server.definition(ctx, definitionParams(1, 4))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"book", ""}, finder.calls)
}

func TestServer_DidChange(t *testing.T) {
	finder := &stubFinder{}
	server := NewServer("xmldef", "test", finder, nil)
	ctx := &glsp.Context{}

	require.NoError(t, server.didOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: docURI, Text: "<book/>"},
	}))
	require.NoError(t, server.didChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI}},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "<shelf/>\n<book/>"},
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: protocol.Position{Line: 1, Character: 1}, End: protocol.Position{Line: 1, Character: 5}},
				Text:  "cover",
			},
		},
	}))

	text, ok := server.docs.Get(docURI)
	require.True(t, ok)
	assert.Equal(t, "<shelf/>\n<cover/>", text)
}

func TestServer_Handle_Content(t *testing.T) {
	server := NewServer("xmldef", "test", &stubFinder{}, nil)
	identifier := location.NewEncoder("xmldef").Encode(nil, "book").URI

	params, err := json.Marshal(ContentParams{URI: identifier})
	require.NoError(t, err)
	result, validMethod, validParams, err := server.Handle(&glsp.Context{Method: ContentMethod, Params: params})
	require.NoError(t, err)
	assert.True(t, validMethod)
	assert.True(t, validParams)
	assert.Equal(t, "No definition found for 'book'", result)

	_, validMethod, validParams, err = server.Handle(&glsp.Context{Method: ContentMethod, Params: json.RawMessage(`[`)})
	assert.Error(t, err)
	assert.True(t, validMethod)
	assert.False(t, validParams)
}

func TestServer_Initialize(t *testing.T) {
	server := NewServer("xmldef", "1.2.3", &stubFinder{}, nil)

	result, err := server.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)
	initialized, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "xmldef", initialized.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *initialized.ServerInfo.Version)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, initialized.Capabilities.TextDocumentSync)
	assert.NotNil(t, initialized.Capabilities.DefinitionProvider)
}

func TestServer_DidChangeWatchedFiles(t *testing.T) {
	reloader := &stubReloader{watched: "file:///schemas/book.xsd"}
	server := NewServer("xmldef", "test", &stubFinder{}, reloader)
	ctx := &glsp.Context{}

	require.NoError(t, server.didChangeWatchedFiles(ctx, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{{URI: "file:///work/other.xml", Type: protocol.FileChangeTypeChanged}},
	}))
	assert.Equal(t, 0, reloader.reloads)

	require.NoError(t, server.didChangeWatchedFiles(ctx, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{
			{URI: "file:///schemas/book.xsd", Type: protocol.FileChangeTypeChanged},
			{URI: "file:///schemas/book.xsd", Type: protocol.FileChangeTypeChanged},
		},
	}))
	assert.Equal(t, 1, reloader.reloads)
}
