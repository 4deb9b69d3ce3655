package ctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text     string
		expected Expr
		canon    string
	}{
		{"double", Expr{Base: "double"}, "double"},
		{"const float *", Expr{Base: "float", Const: true, Pointers: 1}, "const float *"},
		{"const char*", Expr{Base: "char", Const: true, Pointers: 1}, "const char *"},
		{"float const *", Expr{Base: "float", Const: true, Pointers: 1}, "const float *"},
		{"bool*", Expr{Base: "bool", Pointers: 1}, "bool *"},
		{"unsigned int&", Expr{Base: "unsigned int", Reference: true}, "unsigned int &"},
		{"float[4]", Expr{Base: "float", Dims: []string{"4"}}, "float[4]"},
		{"const float [IM_COL_COUNT]", Expr{Base: "float", Const: true, Dims: []string{"IM_COL_COUNT"}}, "const float[IM_COL_COUNT]"},
		{"int[2][3]", Expr{Base: "int", Dims: []string{"2", "3"}}, "int[2][3]"},
		{"char * const", Expr{Base: "char", Pointers: 1}, "char *"},
		{"void **", Expr{Base: "void", Pointers: 2}, "void **"},
		{"std::string&&", Expr{Base: "std::string", RValue: true}, "std::string &&"},
		{"struct ImVec2", Expr{Base: "ImVec2"}, "ImVec2"},
		{"ImVector<int> *", Expr{Base: "ImVector<int>", Pointers: 1}, "ImVector<int> *"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e := Parse(tt.text)
			assert.Equal(t, tt.expected, e)
			assert.Equal(t, tt.canon, e.String())
		})
	}
}

func TestExprPredicates(t *testing.T) {
	assert.True(t, Parse("const char *").IsCString())
	assert.False(t, Parse("char *").IsCString())
	assert.True(t, Parse("void").IsVoid())
	assert.False(t, Parse("void *").IsVoid())
	assert.True(t, Parse("float[3]").IsArray())
	assert.True(t, Parse("int &").IsIndirect())
	assert.Equal(t, Expr{Base: "float", Const: true}, Parse("const float *").Value())
}

func TestDeclare(t *testing.T) {
	assert.Equal(t, "float v[4]", Parse("float[4]").Declare("v"))
	assert.Equal(t, "const char *fmt", Parse("const char *").Declare("fmt"))
	assert.Equal(t, "int &x", Parse("int&").Declare("x"))
	assert.Equal(t, "double x", Parse("double").Declare("x"))
}

func TestArraySize(t *testing.T) {
	lookup := func(name string) (int, bool) {
		if name == "IM_COL_COUNT" {
			return 4, true
		}

		return 0, false
	}

	tests := []struct {
		text string
		size int
		ok   bool
	}{
		{"float[3]", 3, true},
		{"float[0x10]", 16, true},
		{"float[4u]", 4, true},
		{"float[IM_COL_COUNT]", 4, true},
		{"float[UNKNOWN]", 0, false},
		{"float[N + 1]", 0, false},
		{"float[0]", 0, false},
		{"float[2][2]", 0, false},
		{"float", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			size, ok := Parse(tt.text).ArraySize(lookup)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindFloat32, Parse("const float *").Kind())
	assert.Equal(t, KindUint32, KindOf("unsigned int"))
	assert.Equal(t, KindInt8, KindOf("ImS8"))
	assert.Equal(t, Kind(0), KindOf("ImVec2"))

	assert.True(t, KindBool.IsScalar())
	assert.False(t, KindChar.IsScalar())
	assert.True(t, KindUint64.IsInteger())
	assert.False(t, KindFloat64.IsInteger())
	assert.True(t, KindFloat64.IsNumber())

	assert.Equal(t, "bool", KindBool.PyType())
	assert.Equal(t, "int", KindInt16.PyType())
	assert.Equal(t, "float", KindFloat32.PyType())
	assert.Equal(t, "None", KindVoid.PyType())
	assert.Equal(t, "Any", Kind(0).PyType())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "float32", KindFloat32.String())
}

func TestReplaceWord(t *testing.T) {
	assert.Equal(t, "const float *", ReplaceWord("const T *", "T", "float"))
	assert.Equal(t, "ImVector<int>", ReplaceWord("ImVector<T>", "T", "int"))
	assert.Equal(t, "Type", ReplaceWord("Type", "T", "int"))
}

func TestTemplateArgs(t *testing.T) {
	name, args := TemplateArgs("ImVector<int>")
	assert.Equal(t, "ImVector", name)
	assert.Equal(t, []string{"int"}, args)

	name, args = TemplateArgs("std::map<int, std::pair<int, float>>")
	assert.Equal(t, "std::map", name)
	assert.Equal(t, []string{"int", "std::pair<int, float>"}, args)

	name, args = TemplateArgs("ImVec2")
	assert.Equal(t, "ImVec2", name)
	assert.Nil(t, args)
}
