package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/0muji4/xmldef/internal/schema"
)

// ErrUnknownTarget reports an identifier whose target is not a loaded schema.
var ErrUnknownTarget = errors.New("location: target is not a loaded schema")

// Fetcher reads the text behind a real definition URI.
type Fetcher interface {
	ReadURL(ctx context.Context, URL string) (string, error)
}

// Sources exposes the schemas whose text may be served.
type Sources interface {
	Snapshot() schema.Collection
}

// ContentProvider renders the document an identifier points at.
type ContentProvider struct {
	encoder *Encoder
	fetcher Fetcher
	sources Sources
}

// NewContentProvider returns a provider decoding with encoder and reading
// targets that belong to sources through fetcher.
func NewContentProvider(encoder *Encoder, fetcher Fetcher, sources Sources) *ContentProvider {
	return &ContentProvider{encoder: encoder, fetcher: fetcher, sources: sources}
}

// Content returns the diagnostic message or the definition source text.
// Only URIs of the current schema snapshot are read.
func (p *ContentProvider) Content(ctx context.Context, identifier string) (string, error) {
	target, err := p.encoder.Decode(identifier)
	if err != nil {
		return "", err
	}
	if target.IsDiagnostic() {
		return target.Diagnostic, nil
	}
	if !p.loaded(target.URI) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTarget, target.URI)
	}
	if p.fetcher == nil {
		return "", fmt.Errorf("location: no fetcher for %s", target.URI)
	}
	text, err := p.fetcher.ReadURL(ctx, target.URI)
	if err != nil {
		return "", fmt.Errorf("location: read %s: %w", target.URI, err)
	}
	return text, nil
}

func (p *ContentProvider) loaded(URI string) bool {
	if p.sources == nil {
		return false
	}
	for _, candidate := range p.sources.Snapshot().URIs() {
		if candidate == URI {
			return true
		}
	}
	return false
}
