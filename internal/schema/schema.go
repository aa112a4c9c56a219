package schema

// Location pinpoints where a symbol is declared. Line and Column are
// zero-based; an unset value is zero.
type Location struct {
	URI    string
	Line   int
	Column int
}

// Attribute is an attribute declaration scoped to its owning Tag.
type Attribute struct {
	Name     string
	Location *Location // nil when the declaration site is unknown
}

// Tag is an element declaration together with its legal attributes.
type Tag struct {
	Name       string
	Location   *Location // nil when the declaration site is unknown
	Attributes []*Attribute
}

// Source is one parsed schema. Sources are never modified after loading.
type Source struct {
	URI             string
	TargetNamespace string
	Tags            []*Tag
}

// Collection is an ordered, immutable snapshot of schema sources.
// Order is registration order and decides ties between sources.
type Collection []*Source

// Len returns the number of sources.
func (c Collection) Len() int {
	return len(c)
}

// URIs returns the source URIs in registration order.
func (c Collection) URIs() []string {
	result := make([]string, 0, len(c))
	for _, source := range c {
		result = append(result, source.URI)
	}
	return result
}
