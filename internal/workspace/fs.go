package workspace

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

var _ Reader = (*FSReader)(nil)

// FSReader reads documents through afs. With a root, ReadFile only serves
// locations under it: relative paths resolve against the root, and
// absolute paths and URLs must fall inside it.
type FSReader struct {
	rootURL string
	fs      afs.Service
}

// NewFSReader returns a reader confined to rootPath, a local directory or
// an afs URL. An empty rootPath disables confinement.
func NewFSReader(rootPath string, fs afs.Service) *FSReader {
	rootURL := ""
	if rootPath != "" {
		rootURL = strings.TrimSuffix(cleanURL(toURL(rootPath)), "/")
	}
	return &FSReader{rootURL: rootURL, fs: fs}
}

// Root returns the confining root URL, or "" when unconfined.
func (r *FSReader) Root() string {
	return r.rootURL
}

func (r *FSReader) ReadFile(ctx context.Context, location string) (string, error) {
	URL, err := r.resolve(location)
	if err != nil {
		return "", err
	}
	return r.ReadURL(ctx, URL)
}

// ReadURL reads URL as given; untrusted locations go through ReadFile.
func (r *FSReader) ReadURL(ctx context.Context, URL string) (string, error) {
	data, err := r.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return "", fmt.Errorf("workspace: read %s: %w", URL, err)
	}
	return string(data), nil
}

func (r *FSReader) resolve(location string) (string, error) {
	if r.rootURL == "" {
		if strings.Contains(location, "://") {
			return location, nil
		}
		return toURL(location), nil
	}

	URL := location
	if !strings.Contains(location, "://") {
		if filepath.IsAbs(location) {
			URL = toURL(location)
		} else {
			URL = r.rootURL + "/" + filepath.ToSlash(location)
		}
	}
	decoded, err := url.PathUnescape(URL)
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	URL = cleanURL(decoded)
	// パストラバーサル防止
	if URL != r.rootURL && !strings.HasPrefix(URL, r.rootURL+"/") {
		return "", fmt.Errorf("path %q is outside project root", location)
	}
	return URL, nil
}

// toURL turns a local path into a file:// URL; URLs are kept.
func toURL(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	location = filepath.ToSlash(location)
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return "file://" + location
}

// cleanURL removes dot segments from the path part of URL.
func cleanURL(URL string) string {
	index := strings.Index(URL, "://")
	if index < 0 {
		return path.Clean(URL)
	}
	scheme, rest := URL[:index+3], URL[index+3:]
	if rest == "" {
		return URL
	}
	return scheme + path.Clean(rest)
}
