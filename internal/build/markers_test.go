package build

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyglue-generator/internal/common"
)

func TestStripMarkers(t *testing.T) {
	src := "IMGUI_API void Foo();\n" +
		"int IM_FMTARGS(2) Bar(const char* fmt, ...);\n" +
		"// IMGUI_API in comment\n" +
		"const char* s = \"IMGUI_API\";\n" +
		"int IMGUI_APIX;\n"

	out, set := StripMarkers([]byte(src), []string{"IMGUI_API"}, []string{"IM_FMTARGS"})
	require.Len(t, out, len(src))

	lines := strings.Split(string(out), "\n")
	assert.Equal(t, strings.Repeat(" ", len("IMGUI_API"))+" void Foo();", lines[0])
	assert.Equal(t, "int "+strings.Repeat(" ", len("IM_FMTARGS(2)"))+" Bar(const char* fmt, ...);", lines[1])
	assert.Equal(t, "// IMGUI_API in comment", lines[2])
	assert.Equal(t, "const char* s = \"IMGUI_API\";", lines[3])
	assert.Equal(t, "int IMGUI_APIX;", lines[4])

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.On(common.Span{Start: common.Position{Line: 1, Column: 10}, End: common.Position{Line: 1, Column: 21}}))
	assert.True(t, set.On(common.Span{Start: common.Position{Line: 2, Column: 0}, End: common.Position{Line: 2, Column: 44}}))
	assert.False(t, set.On(common.Span{Start: common.Position{Line: 4, Column: 0}, End: common.Position{Line: 4, Column: 28}}))
}

func TestStripMarkers_BlockCommentAndNoMacros(t *testing.T) {
	src := "/* IMGUI_API */ IMGUI_API int x;\n"

	out, set := StripMarkers([]byte(src), []string{"IMGUI_API"})
	assert.Equal(t, "/* IMGUI_API */           int x;\n", string(out))
	assert.Equal(t, 1, set.Len())

	same, none := StripMarkers([]byte(src))
	assert.Equal(t, src, string(same))
	assert.Zero(t, none.Len())
}
