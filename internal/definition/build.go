package definition

import (
	"context"

	"github.com/viant/afs"

	"github.com/0muji4/xmldef/internal/config"
	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/scope"
	"github.com/0muji4/xmldef/internal/symbol"
	"github.com/0muji4/xmldef/internal/workspace"
)

// Build wires a Service for cfg and loads its schemas.
func Build(ctx context.Context, cfg *config.Config, fs afs.Service) (*Service, error) {
	encoder := location.NewEncoder(cfg.Scheme)
	reader := workspace.NewFSReader("", fs)
	registry := schema.NewRegistry(schema.NewLoader(fs), cfg.Schemas...)
	if err := registry.Reload(ctx); err != nil {
		return nil, err
	}
	return NewService(
		scope.NewScanner(),
		symbol.NewSchemaResolver(encoder),
		registry,
		location.NewContentProvider(encoder, reader, registry),
	), nil
}
