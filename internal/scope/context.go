// Package scope classifies the lexical role of a cursor offset inside a
// possibly incomplete XML document.
package scope

import "fmt"

// Context is the lexical role at an offset. The set of implementations is
// closed: ElementContext, AttributeContext and OtherContext.
type Context interface {
	fmt.Stringer
	isContext()
}

// ElementContext is a position inside an element's tag name.
type ElementContext struct {
	Tag     string
	Closing bool
}

// AttributeContext is a position where an attribute name is written.
type AttributeContext struct {
	Tag       string // owning element
	Attribute string // may be empty when the name is not typed yet
}

// Kind identifies the non-symbol positions.
type Kind int

const (
	Text Kind = iota
	AttributeValue
	Comment
	CDATA
	ProcessingInstruction
	Declaration
	TagEnd
)

var kindNames = [...]string{
	Text:                  "text",
	AttributeValue:        "attribute value",
	Comment:               "comment",
	CDATA:                 "cdata",
	ProcessingInstruction: "processing instruction",
	Declaration:           "declaration",
	TagEnd:                "tag end",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// OtherContext is any position where no symbol can be resolved.
type OtherContext struct {
	Kind Kind
}

func (ElementContext) isContext()   {}
func (AttributeContext) isContext() {}
func (OtherContext) isContext()     {}

func (c ElementContext) String() string {
	return fmt.Sprintf("element %q", c.Tag)
}

func (c AttributeContext) String() string {
	return fmt.Sprintf("attribute %q of %q", c.Attribute, c.Tag)
}

func (c OtherContext) String() string {
	return c.Kind.String()
}
