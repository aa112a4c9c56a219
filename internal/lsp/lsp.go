package lsp

import (
	"context"

	"github.com/0muji4/xmldef/internal/location"
)

// DefinitionFinder defines the lookups the language server delegates to.
type DefinitionFinder interface {
	FindAt(ctx context.Context, text string, line, character int) (location.Result, error)
	Content(ctx context.Context, identifier string) (string, error)
}

// SchemaReloader defines schema reloads triggered by file watching.
type SchemaReloader interface {
	Watches(uri string) bool
	Reload(ctx context.Context) error
}
