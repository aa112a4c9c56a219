package symbol

import (
	"strings"

	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/scope"
)

var _ Resolver = (*SchemaResolver)(nil)

// SchemaResolver resolves element and attribute names against schema
// sources. The first declaration in source order wins.
//
// Attributes are matched by name alone, whatever element the cursor is
// in: an attribute declared on two elements always resolves to the
// first one encountered.
type SchemaResolver struct {
	encoder *location.Encoder
}

func NewSchemaResolver(encoder *location.Encoder) *SchemaResolver {
	return &SchemaResolver{encoder: encoder}
}

func (r *SchemaResolver) Resolve(context scope.Context, word string, schemas schema.Collection) (location.Result, error) {
	var find func(schema.Collection, string) *schema.Location
	switch context.(type) {
	case scope.ElementContext:
		find = FindTag
	case scope.AttributeContext:
		find = FindAttribute
	default:
		return location.Result{}, &UnsupportedContextError{Context: context, Word: word}
	}
	if strings.TrimSpace(word) == "" {
		return location.Result{}, &EmptyWordError{Word: word}
	}
	return r.encoder.Encode(find(schemas, word), word), nil
}

// FindTag returns the location of the first tag named name, or nil when
// no tag matches or the match has no known location.
func FindTag(schemas schema.Collection, name string) *schema.Location {
	for _, source := range schemas {
		for _, tag := range source.Tags {
			if tag.Name == name {
				return tag.Location
			}
		}
	}
	return nil
}

// FindAttribute returns the location of the first attribute named name
// across every tag of every source.
func FindAttribute(schemas schema.Collection, name string) *schema.Location {
	for _, source := range schemas {
		for _, tag := range source.Tags {
			for _, attribute := range tag.Attributes {
				if attribute.Name == name {
					return attribute.Location
				}
			}
		}
	}
	return nil
}
