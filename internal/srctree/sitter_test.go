package srctree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitterProvider_Enum(t *testing.T) {
	src := "enum Foo\n{\n    A,\n    B\n};\n"

	root, err := NewSitterProvider().Parse(context.Background(), []byte(src), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "translation_unit", root.Tag)
	assert.False(t, root.HasDefect())

	enum := root.Find("enum_specifier")
	require.NotNil(t, enum)
	assert.Equal(t, 1, enum.Start.Line)
	assert.Equal(t, "Foo", enum.Child("type_identifier").Text)

	list := enum.Child("enumerator_list")
	require.NotNil(t, list)
	assert.Len(t, list.ChildrenOf("enumerator"), 2)
	assert.Equal(t, 5, list.End.Line)
}

func TestSitterProvider_UnbalancedBody(t *testing.T) {
	root, err := NewSitterProvider().Parse(context.Background(), []byte("struct Foo {\n    int a;\n"), "utf-8")
	require.NoError(t, err)
	assert.True(t, root.HasDefect())
}

func TestSitterProvider_RejectsEncoding(t *testing.T) {
	_, err := NewSitterProvider().Parse(context.Background(), []byte("int x;"), "latin-1")
	require.Error(t, err)
}
