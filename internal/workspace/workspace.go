package workspace

import "context"

// Reader defines operations for reading documents and schema sources.
type Reader interface {
	ReadFile(ctx context.Context, path string) (string, error)
	ReadURL(ctx context.Context, URL string) (string, error)
}
