package schema

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/viant/afs"
)

const xsdNamespace = "http://www.w3.org/2001/XMLSchema"

var logger = commonlog.GetLogger("xmldef.schema")

// Loader reads XML Schema documents into Sources.
type Loader struct {
	fs afs.Service
}

// NewLoader returns a loader fetching schemas through fs.
func NewLoader(fs afs.Service) *Loader {
	return &Loader{fs: fs}
}

// LoadAll loads every URL, keeping the given order.
func (l *Loader) LoadAll(ctx context.Context, urls []string) (Collection, error) {
	result := make(Collection, 0, len(urls))
	for _, URL := range urls {
		source, err := l.Load(ctx, URL)
		if err != nil {
			return nil, err
		}
		result = append(result, source)
	}
	return result, nil
}

// Load downloads and parses a single schema. Inline data: URLs are
// rejected; that prefix is reserved for diagnostic identifiers.
func (l *Loader) Load(ctx context.Context, URL string) (*Source, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(URL)), "data:") {
		return nil, fmt.Errorf("schema: %s: data: URLs are not supported", URL)
	}
	URI := NormalizeURL(URL)
	data, err := l.fs.DownloadWithURL(ctx, URI)
	if err != nil {
		return nil, fmt.Errorf("schema: download %s: %w", URI, err)
	}
	source, err := Parse(URI, data)
	if err != nil {
		return nil, err
	}
	logger.Debugf("parsed %s: %d tag(s)", URI, len(source.Tags))
	return source, nil
}

// NormalizeURL turns a local path into a file:// URI and leaves URLs with
// a scheme untouched.
func NormalizeURL(URL string) string {
	if strings.Contains(URL, "://") || strings.HasPrefix(URL, "data:") {
		return URL
	}
	if abs, err := filepath.Abs(URL); err == nil {
		URL = abs
	}
	return "file://" + filepath.ToSlash(URL)
}

// Parse builds a Source from XSD content. Named element declarations at
// any depth become tags; attribute declarations attach to the nearest
// enclosing named element, complex type or attribute group, and elements
// inherit the attributes of the types and groups they reference.
func Parse(URI string, data []byte) (*Source, error) {
	p := &xsdParser{
		source:  &Source{URI: URI},
		lines:   newLineIndex(data),
		data:    data,
		owners:  map[*Tag]*declarations{},
		types:   map[string]*declarations{},
		groups:  map[string]*declarations{},
		globals: map[string]*Attribute{},
	}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", URI, err)
	}
	p.link()
	return p.source, nil
}

type entryKind int

const (
	ownAttribute entryKind = iota
	typeReference
	groupReference
	attributeReference
)

// entry keeps declaration order between own attributes and references.
type entry struct {
	kind      entryKind
	attribute *Attribute
	name      string
}

type declarations struct {
	entries []entry
}

func (d *declarations) add(e entry) {
	d.entries = append(d.entries, e)
}

type frame struct {
	decls *declarations
}

type xsdParser struct {
	source  *Source
	lines   lineIndex
	data    []byte
	stack   []frame
	owners  map[*Tag]*declarations
	types   map[string]*declarations
	groups  map[string]*declarations
	globals map[string]*Attribute
}

func (p *xsdParser) parse() error {
	decoder := xml.NewDecoder(bytes.NewReader(p.data))
	// Declared encodings are read as-is; schema names are expected to be ASCII.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		offset := decoder.InputOffset()
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch actual := token.(type) {
		case xml.StartElement:
			p.stack = append(p.stack, p.start(actual, p.startOffset(offset)))
		case xml.EndElement:
			if len(p.stack) > 0 {
				p.stack = p.stack[:len(p.stack)-1]
			}
		}
	}
}

// startOffset finds the '<' opening the token read from offset on.
func (p *xsdParser) startOffset(offset int64) int {
	start := int(offset)
	if index := bytes.IndexByte(p.data[start:], '<'); index >= 0 {
		return start + index
	}
	return start
}

func (p *xsdParser) start(element xml.StartElement, offset int) frame {
	if element.Name.Space != xsdNamespace {
		return frame{}
	}
	name := attr(element, "name")
	switch element.Name.Local {
	case "schema":
		p.source.TargetNamespace = attr(element, "targetNamespace")
	case "element":
		if name == "" {
			return frame{}
		}
		tag := &Tag{Name: name, Location: p.location(offset)}
		p.source.Tags = append(p.source.Tags, tag)
		decls := &declarations{}
		if typeName := attr(element, "type"); typeName != "" {
			decls.add(entry{kind: typeReference, name: localName(typeName)})
		}
		p.owners[tag] = decls
		return frame{decls: decls}
	case "complexType":
		if name == "" || p.nearest() != nil {
			return frame{}
		}
		decls := &declarations{}
		p.types[name] = decls
		return frame{decls: decls}
	case "attributeGroup":
		if ref := attr(element, "ref"); ref != "" {
			if owner := p.nearest(); owner != nil {
				owner.add(entry{kind: groupReference, name: localName(ref)})
			}
			return frame{}
		}
		if name == "" {
			return frame{}
		}
		decls := &declarations{}
		p.groups[name] = decls
		return frame{decls: decls}
	case "extension", "restriction":
		if base := attr(element, "base"); base != "" {
			if owner := p.nearest(); owner != nil {
				owner.add(entry{kind: typeReference, name: localName(base)})
			}
		}
	case "attribute":
		owner := p.nearest()
		if ref := attr(element, "ref"); ref != "" {
			if owner != nil {
				owner.add(entry{kind: attributeReference, name: localName(ref)})
			}
			return frame{}
		}
		if name == "" {
			return frame{}
		}
		attribute := &Attribute{Name: name, Location: p.location(offset)}
		if owner == nil {
			p.globals[name] = attribute
			return frame{}
		}
		owner.add(entry{kind: ownAttribute, attribute: attribute})
	}
	return frame{}
}

func (p *xsdParser) nearest() *declarations {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].decls != nil {
			return p.stack[i].decls
		}
	}
	return nil
}

func (p *xsdParser) location(offset int) *Location {
	line, column := p.lines.position(p.data, offset)
	return &Location{URI: p.source.URI, Line: line, Column: column}
}

func (p *xsdParser) link() {
	for _, tag := range p.source.Tags {
		visited := map[*declarations]bool{}
		tag.Attributes = p.expand(p.owners[tag], visited, nil)
	}
}

func (p *xsdParser) expand(decls *declarations, visited map[*declarations]bool, result []*Attribute) []*Attribute {
	if decls == nil || visited[decls] {
		return result
	}
	visited[decls] = true
	for _, e := range decls.entries {
		switch e.kind {
		case ownAttribute:
			result = append(result, e.attribute)
		case typeReference:
			result = p.expand(p.types[e.name], visited, result)
		case groupReference:
			result = p.expand(p.groups[e.name], visited, result)
		case attributeReference:
			if global, ok := p.globals[e.name]; ok {
				result = append(result, global)
			}
		}
	}
	return result
}

func attr(element xml.StartElement, name string) string {
	for _, candidate := range element.Attr {
		if candidate.Name.Space == "" && candidate.Name.Local == name {
			return strings.TrimSpace(candidate.Value)
		}
	}
	return ""
}

func localName(qname string) string {
	if _, local, ok := strings.Cut(qname, ":"); ok {
		return local
	}
	return qname
}
