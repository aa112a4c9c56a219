// Package location turns definition locations into self-describing
// resource identifiers and back.
//
// Every identifier has the shape <scheme>://<hex(target)>. The target is
// either the real definition URI, or a data: URI carrying a base64
// diagnostic message when there is nothing to point at. The data: prefix
// tells a decoder which of the two it holds.
package location

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/0muji4/xmldef/internal/schema"
)

// DefaultScheme is used when no scheme is configured.
const DefaultScheme = "xmldef"

const diagnosticPrefix = "data:text/plain;base64,"

// Result is a navigable definition location.
type Result struct {
	URI    string `json:"uri"`
	Target string `json:"target"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Found  bool   `json:"found"`
}

// Encoder builds identifiers for a fixed scheme.
type Encoder struct {
	scheme string
}

// NewEncoder returns an encoder for scheme, or DefaultScheme when empty.
func NewEncoder(scheme string) *Encoder {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Encoder{scheme: scheme}
}

// Scheme returns the identifier scheme.
func (e *Encoder) Scheme() string {
	return e.scheme
}

// Encode converts a definition location into a Result. A nil or
// URI-less location yields a diagnostic naming subject.
func (e *Encoder) Encode(loc *schema.Location, subject string) Result {
	if loc == nil || loc.URI == "" {
		target := DiagnosticURI(NoDefinitionMessage(subject))
		return Result{URI: e.wrap(target), Target: target}
	}
	return Result{
		URI:    e.wrap(loc.URI),
		Target: loc.URI,
		Line:   loc.Line,
		Column: loc.Column,
		Found:  true,
	}
}

func (e *Encoder) wrap(target string) string {
	return e.scheme + "://" + hex.EncodeToString([]byte(target))
}

// NoDefinitionMessage is the diagnostic shown when subject has no definition.
func NoDefinitionMessage(subject string) string {
	return fmt.Sprintf("No definition found for '%s'", subject)
}

// DiagnosticURI embeds message in a self-contained data URI.
func DiagnosticURI(message string) string {
	return diagnosticPrefix + base64.StdEncoding.EncodeToString([]byte(message))
}

// Target is a decoded identifier.
type Target struct {
	// URI is the real definition URI; empty for diagnostics.
	URI string
	// Diagnostic is the embedded message; empty for real definitions.
	Diagnostic string
}

// IsDiagnostic reports whether the identifier carried a message rather
// than a definition URI.
func (t Target) IsDiagnostic() bool {
	return t.URI == ""
}

// Owns reports whether identifier uses this encoder's scheme.
func (e *Encoder) Owns(identifier string) bool {
	return strings.HasPrefix(identifier, e.scheme+"://")
}

// Decode reverses Encode.
func (e *Encoder) Decode(identifier string) (Target, error) {
	payload, ok := strings.CutPrefix(identifier, e.scheme+"://")
	if !ok {
		return Target{}, fmt.Errorf("location: %q is not a %s identifier", identifier, e.scheme)
	}
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return Target{}, fmt.Errorf("location: decode %q: %w", identifier, err)
	}
	return DecodeTarget(string(raw))
}

// DecodeTarget interprets an unwrapped target.
func DecodeTarget(target string) (Target, error) {
	encoded, ok := strings.CutPrefix(target, diagnosticPrefix)
	if !ok {
		return Target{URI: target}, nil
	}
	message, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Target{}, fmt.Errorf("location: decode diagnostic: %w", err)
	}
	return Target{Diagnostic: string(message)}, nil
}
