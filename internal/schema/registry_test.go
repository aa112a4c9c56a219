package schema

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestRegistry_Reload(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/xmldef/registry/a.xsd"
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(
		`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="a"/></xs:schema>`)))

	registry := NewRegistry(NewLoader(fs), URL)
	assert.Equal(t, 0, registry.Snapshot().Len())

	require.NoError(t, registry.Reload(ctx))
	before := registry.Snapshot()
	require.Equal(t, 1, before.Len())
	assert.Equal(t, "a", before[0].Tags[0].Name)

	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(
		`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="b"/></xs:schema>`)))
	require.NoError(t, registry.Reload(ctx))

	assert.Equal(t, "a", before[0].Tags[0].Name, "earlier snapshot is unaffected")
	assert.Equal(t, "b", registry.Snapshot()[0].Tags[0].Name)

	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(`<xs:schema`)))
	assert.Error(t, registry.Reload(ctx))
	assert.Equal(t, "b", registry.Snapshot()[0].Tags[0].Name, "failed reload keeps the previous snapshot")
}

func TestRegistry_ConcurrentReplace(t *testing.T) {
	registry := NewRegistry(nil)
	first := Collection{{URI: "mem://localhost/first.xsd"}}
	second := Collection{{URI: "mem://localhost/second.xsd"}, {URI: "mem://localhost/third.xsd"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				registry.Replace(first)
				registry.Replace(second)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snapshot := registry.Snapshot()
				assert.Contains(t, []int{0, 1, 2}, snapshot.Len())
			}
		}()
	}
	wg.Wait()
	assert.Error(t, registry.Reload(context.Background()))
}

func TestRegistry_Watches(t *testing.T) {
	registry := NewRegistry(nil, "/tmp/xmldef/a.xsd", "mem://localhost/b.xsd")
	assert.True(t, registry.Watches("file:///tmp/xmldef/a.xsd"))
	assert.True(t, registry.Watches("mem://localhost/b.xsd"))
	assert.False(t, registry.Watches("file:///tmp/xmldef/c.xsd"))
}

func TestRegistry_Watches_Escaped(t *testing.T) {
	registry := NewRegistry(nil, "/tmp/xml def/a.xsd", "file:///tmp/x%2By/b.xsd")

	testCases := []struct {
		description string
		uri         string
		expect      bool
	}{
		{description: "escaped space", uri: "file:///tmp/xml%20def/a.xsd", expect: true},
		{description: "plain space", uri: "file:///tmp/xml def/a.xsd", expect: true},
		{description: "escaped configured, plain notified", uri: "file:///tmp/x+y/b.xsd", expect: true},
		{description: "escaped both", uri: "file:///tmp/x%2By/b.xsd", expect: true},
		{description: "other file", uri: "file:///tmp/xml%20def/c.xsd"},
		{description: "bad escape", uri: "file:///tmp/xml%zzdef/a.xsd"},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, registry.Watches(testCase.uri), testCase.description)
	}
}
