package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

const bookSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:books">
  <xs:attribute name="lang" type="xs:string"/>
  <xs:attributeGroup name="common">
    <xs:attribute name="id" type="xs:ID"/>
  </xs:attributeGroup>
  <xs:complexType name="titled">
    <xs:attribute name="title" type="xs:string"/>
  </xs:complexType>
  <xs:element name="library">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="book" maxOccurs="unbounded">
          <xs:complexType>
            <xs:complexContent>
              <xs:extension base="titled">
                <xs:attribute name="isbn" type="xs:string"/>
                <xs:attributeGroup ref="common"/>
                <xs:attribute ref="lang"/>
              </xs:extension>
            </xs:complexContent>
          </xs:complexType>
        </xs:element>
      </xs:sequence>
      <xs:attribute name="owner" type="xs:string"/>
    </xs:complexType>
  </xs:element>
  <xs:element name="shelf" type="titled"/>
</xs:schema>
`

func attributeNames(tag *Tag) []string {
	var names []string
	for _, attribute := range tag.Attributes {
		names = append(names, attribute.Name)
	}
	return names
}

func TestParse(t *testing.T) {
	source, err := Parse("file:///books.xsd", []byte(bookSchema))
	require.NoError(t, err)

	assert.Equal(t, "urn:books", source.TargetNamespace)
	require.Len(t, source.Tags, 3)

	var testCases = []struct {
		description string
		tag         string
		attributes  []string
		line        int
		column      int
	}{
		{description: "outer element keeps own attribute", tag: "library", attributes: []string{"owner"}, line: 9, column: 2},
		{description: "nested element expands base type, group and ref", tag: "book", attributes: []string{"title", "isbn", "id", "lang"}, line: 12, column: 8},
		{description: "type reference", tag: "shelf", attributes: []string{"title"}, line: 27, column: 2},
	}

	for i, testCase := range testCases {
		tag := source.Tags[i]
		assert.Equal(t, testCase.tag, tag.Name, testCase.description)
		assert.Equal(t, testCase.attributes, attributeNames(tag), testCase.description)
		require.NotNil(t, tag.Location, testCase.description)
		assert.Equal(t, "file:///books.xsd", tag.Location.URI, testCase.description)
		assert.Equal(t, testCase.line, tag.Location.Line, testCase.description)
		assert.Equal(t, testCase.column, tag.Location.Column, testCase.description)
	}

	lang := source.Tags[1].Attributes[3]
	assert.Equal(t, 2, lang.Location.Line)
	assert.Equal(t, 2, lang.Location.Column)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("file:///broken.xsd", []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="a">`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file:///broken.xsd")
}

func TestParse_CyclicTypes(t *testing.T) {
	const cyclic = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:complexType name="a"><xs:complexContent><xs:extension base="b"><xs:attribute name="x"/></xs:extension></xs:complexContent></xs:complexType>
<xs:complexType name="b"><xs:complexContent><xs:extension base="a"><xs:attribute name="y"/></xs:extension></xs:complexContent></xs:complexType>
<xs:element name="root" type="a"/>
</xs:schema>`
	source, err := Parse("mem://localhost/cyclic.xsd", []byte(cyclic))
	require.NoError(t, err)
	require.Len(t, source.Tags, 1)
	assert.Equal(t, []string{"y", "x"}, attributeNames(source.Tags[0]))
}

func TestLoader_LoadAll(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	first := "mem://localhost/xmldef/loader/first.xsd"
	second := "mem://localhost/xmldef/loader/second.xsd"
	require.NoError(t, fs.Upload(ctx, first, file.DefaultFileOsMode, strings.NewReader(bookSchema)))
	require.NoError(t, fs.Upload(ctx, second, file.DefaultFileOsMode, strings.NewReader(
		`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="book"/></xs:schema>`)))

	loader := NewLoader(fs)
	sources, err := loader.LoadAll(ctx, []string{second, first})
	require.NoError(t, err)
	assert.Equal(t, []string{second, first}, sources.URIs())

	_, err = loader.LoadAll(ctx, []string{"mem://localhost/xmldef/loader/missing.xsd"})
	assert.Error(t, err)
}

func TestLoader_Load_DataURL(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(afs.New())

	for _, URL := range []string{
		"data:text/plain;base64,PHhzOnNjaGVtYS8+",
		"DATA:text/plain;base64,PHhzOnNjaGVtYS8+",
		"data:application/xml,<xs:schema/>",
	} {
		source, err := loader.Load(ctx, URL)
		assert.Error(t, err, URL)
		assert.Nil(t, source, URL)
	}

	registry := NewRegistry(loader, "data:text/plain;base64,PHhzOnNjaGVtYS8+")
	assert.Error(t, registry.Reload(ctx))
	assert.Equal(t, 0, registry.Snapshot().Len())
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "mem://localhost/a.xsd", NormalizeURL("mem://localhost/a.xsd"))
	assert.Equal(t, "file:///tmp/a.xsd", NormalizeURL("/tmp/a.xsd"))
	assert.True(t, strings.HasPrefix(NormalizeURL("a.xsd"), "file:///"))
}
