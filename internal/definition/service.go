// Package definition answers "where is the symbol at this offset defined"
// by chaining the scope classifier, word lookup and symbol resolver over
// the current schema snapshot.
package definition

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/scope"
	"github.com/0muji4/xmldef/internal/symbol"
	"github.com/0muji4/xmldef/internal/workspace"
)

var logger = commonlog.GetLogger("xmldef.definition")

// SymbolKind selects element or attribute lookup for name-only queries.
type SymbolKind string

const (
	ElementKind   SymbolKind = "element"
	AttributeKind SymbolKind = "attribute"
)

// Context returns the scope context a name-only lookup of this kind uses.
func (k SymbolKind) Context(name string) (scope.Context, error) {
	switch k {
	case ElementKind:
		return scope.ElementContext{Tag: name}, nil
	case AttributeKind:
		return scope.AttributeContext{Attribute: name}, nil
	}
	return nil, fmt.Errorf("definition: unknown symbol kind %q", string(k))
}

// Service is safe for concurrent use; each call works on one snapshot.
type Service struct {
	classifier scope.Classifier
	resolver   symbol.Resolver
	registry   *schema.Registry
	content    *location.ContentProvider
}

func NewService(classifier scope.Classifier, resolver symbol.Resolver, registry *schema.Registry, content *location.ContentProvider) *Service {
	return &Service{
		classifier: classifier,
		resolver:   resolver,
		registry:   registry,
		content:    content,
	}
}

// Find resolves the symbol at offset in text.
func (s *Service) Find(ctx context.Context, text string, offset int) (location.Result, error) {
	snapshot := s.registry.Snapshot()
	scopeContext, err := s.classifier.Classify(ctx, text, offset)
	if err != nil {
		return location.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return location.Result{}, err
	}
	word := workspace.WordAt(text, offset)
	logger.Debugf("offset %d: %s, word %q", offset, scopeContext, word)
	return s.resolver.Resolve(scopeContext, word, snapshot)
}

// FindAt resolves the symbol at a zero-based line and UTF-16 character.
func (s *Service) FindAt(ctx context.Context, text string, line, character int) (location.Result, error) {
	return s.Find(ctx, text, workspace.OffsetAt(text, line, character))
}

// Resolve looks a name up directly, without a document.
func (s *Service) Resolve(kind SymbolKind, name string) (location.Result, error) {
	scopeContext, err := kind.Context(name)
	if err != nil {
		return location.Result{}, err
	}
	return s.resolver.Resolve(scopeContext, name, s.registry.Snapshot())
}

// Content renders the virtual document behind identifier.
func (s *Service) Content(ctx context.Context, identifier string) (string, error) {
	return s.content.Content(ctx, identifier)
}

// Schemas returns the current snapshot.
func (s *Service) Schemas() schema.Collection {
	return s.registry.Snapshot()
}

// Registry exposes the schema registry for reloads.
func (s *Service) Registry() *schema.Registry {
	return s.registry
}
