package symbol

import (
	"fmt"

	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/scope"
)

// Resolver finds the definition of the symbol under a classified cursor.
type Resolver interface {
	Resolve(context scope.Context, word string, schemas schema.Collection) (location.Result, error)
}

// UnsupportedContextError is returned for contexts other than element
// and attribute names.
type UnsupportedContextError struct {
	Context scope.Context
	Word    string
}

func (e *UnsupportedContextError) Error() string {
	context := "<nil>"
	if e.Context != nil {
		context = e.Context.String()
	}
	return fmt.Sprintf("unable to get definition for phrase '%s': unsupported context %s", e.Word, context)
}

// EmptyWordError is returned when no word was found at the cursor.
type EmptyWordError struct {
	Word string
}

func (e *EmptyWordError) Error() string {
	return fmt.Sprintf("unable to get definition: no word at cursor (%q)", e.Word)
}
