package schema

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
)

// Registry publishes the current schema collection. Readers take a
// Snapshot and keep using it even if a reload swaps in a new one.
type Registry struct {
	loader  *Loader
	current atomic.Pointer[Collection]

	mu   sync.Mutex // serialises reloads
	urls []string
}

// NewRegistry returns an empty registry that loads from urls on Reload.
func NewRegistry(loader *Loader, urls ...string) *Registry {
	r := &Registry{loader: loader, urls: append([]string(nil), urls...)}
	empty := Collection{}
	r.current.Store(&empty)
	return r
}

// Snapshot returns the collection in effect right now.
func (r *Registry) Snapshot() Collection {
	return *r.current.Load()
}

// Replace publishes sources as the new collection.
func (r *Registry) Replace(sources Collection) {
	snapshot := append(Collection(nil), sources...)
	r.current.Store(&snapshot)
}

// URLs returns the configured schema locations.
func (r *Registry) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// Watches reports whether uri is one of the configured schema locations.
// Percent-encoded and plain spellings of a location match.
func (r *Registry) Watches(uri string) bool {
	normalized := decodedURL(uri)
	for _, candidate := range r.URLs() {
		if decodedURL(candidate) == normalized {
			return true
		}
	}
	return false
}

func decodedURL(location string) string {
	normalized := NormalizeURL(location)
	if decoded, err := url.PathUnescape(normalized); err == nil {
		return decoded
	}
	return normalized
}

// Reload re-reads every configured schema and publishes the result.
// On failure the previous snapshot stays in place.
func (r *Registry) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loader == nil {
		return fmt.Errorf("schema: reload: no loader configured")
	}
	sources, err := r.loader.LoadAll(ctx, r.urls)
	if err != nil {
		return err
	}
	r.Replace(sources)
	logger.Infof("loaded %d schema(s)", len(sources))
	return nil
}
