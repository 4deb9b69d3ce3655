package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/logger"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/srctree"
)

const (
	axisHeader  = "enum ImAxis_ {\n    ImAxis_X1,\n    ImAxis_X2\n};\nvoid SetAxis(ImAxis_ axis);\n"
	resetHeader = "void Reset(int axis = ImAxis_X2);\n"

	glueTemplate = "#include <pybind11/pybind11.h>\n" +
		"namespace py = pybind11;\n\n" +
		"PYBIND11_MODULE(demo, m) {\n" +
		"    // <autogen:glue>\n" +
		"    // </autogen:glue>\n" +
		"}\n"
	stubTemplate = "# <autogen:stub>\n# </autogen:stub>\n"
)

type workspace struct {
	dir  string
	glue string
	stub string
}

func newWorkspace(t *testing.T, headers map[string]string) workspace {
	t.Helper()

	dir := t.TempDir()
	for name, src := range headers {
		write(t, filepath.Join(dir, name), src)
	}

	ws := workspace{
		dir:  dir,
		glue: filepath.Join(dir, "module.cpp"),
		stub: filepath.Join(dir, "demo.pyi"),
	}
	write(t, ws.glue, glueTemplate)
	write(t, ws.stub, stubTemplate)

	return ws
}

func (ws workspace) path(name string) string {
	return filepath.Join(ws.dir, name)
}

func (ws workspace) options() Options {
	return Options{GlueFile: ws.glue, StubFile: ws.stub, PreserveIndent: true, Jobs: 2}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func newContext(t *testing.T, pol *policy.Policy) *GenerationContext {
	t.Helper()

	if pol == nil {
		pol = policy.Default()
	}

	gc, err := NewContext(pol, logger.Nop())
	require.NoError(t, err)

	return gc
}

// failingProvider rejects sources containing "#error" the way a crashing
// external parser would.
type failingProvider struct {
	inner srctree.Provider
}

func (p failingProvider) Parse(ctx context.Context, source []byte, encoding string) (*srctree.Node, error) {
	if bytes.Contains(source, []byte("#error")) {
		return nil, diagnostic.Mark(&srctree.ParseError{ExitStatus: 1, Output: "boom"}, diagnostic.KindSyntaxCollaborator)
	}

	return p.inner.Parse(ctx, source, encoding)
}

func TestRun_SplicesAndResolvesAcrossFiles(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader, "reset.h": resetHeader})
	gc := newContext(t, nil)

	summary, err := Run(context.Background(), gc, []string{ws.path("axis.h"), ws.path("reset.h")}, ws.options())
	require.NoError(t, err)
	require.Empty(t, summary.Failed())
	assert.ElementsMatch(t, []string{ws.glue, ws.stub}, summary.Changed)

	glue := read(t, ws.glue)
	assert.Contains(t, glue, "    // <autogen:glue>\n    py::enum_<ImAxis_> enum_ImAxis(m, \"ImAxis\", py::arithmetic());\n")
	assert.Contains(t, glue, "    m.def(\"set_axis\", &SetAxis, py::arg(\"axis\"));\n")
	assert.Contains(t, glue, "py::arg(\"axis\") = ImAxis_X2")
	assert.Contains(t, glue, "PYBIND11_MODULE(demo, m) {\n")
	assert.Less(t, bytes.Index([]byte(glue), []byte("set_axis")), bytes.Index([]byte(glue), []byte("\"reset\"")))

	stub := read(t, ws.stub)
	assert.Contains(t, stub, "class ImAxis(enum.IntEnum):\n")
	assert.Contains(t, stub, "def set_axis(axis: ImAxis) -> None: ...\n")
	assert.Contains(t, stub, "def reset(axis: int = ImAxis.X2) -> None: ...\n")
	assert.Contains(t, stub, "import enum\n")

	assert.Equal(t, "ImAxis.X2", gc.Rules.Apply("ImAxis_X2"))
}

func TestRun_IsIdempotent(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader})
	gc := newContext(t, nil)
	paths := []string{ws.path("axis.h")}

	_, err := Run(context.Background(), gc, paths, ws.options())
	require.NoError(t, err)

	first := read(t, ws.glue)

	summary, err := Run(context.Background(), gc, paths, ws.options())
	require.NoError(t, err)
	assert.Empty(t, summary.Changed)
	assert.Equal(t, first, read(t, ws.glue))

	hits, misses := gc.Renders.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestRun_FailedFileIsSkipped(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"axis.h":   axisHeader,
		"broken.h": "#error unsupported\nvoid Broken();\n",
	})

	core, logs := observer.New(zapcore.DebugLevel)

	gc, err := NewContext(policy.Default(), zap.New(core).Sugar())
	require.NoError(t, err)
	gc.Provider = failingProvider{inner: srctree.NewSitterProvider()}

	paths := []string{ws.path("broken.h"), ws.path("axis.h"), ws.path("missing.h")}

	summary, err := Run(context.Background(), gc, paths, ws.options())
	require.NoError(t, err)

	failed := summary.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, ws.path("broken.h"), failed[0].Path)
	assert.True(t, errors.Is(failed[0].Err, diagnostic.ErrSyntaxCollaborator))
	assert.Equal(t, ws.path("missing.h"), failed[1].Path)

	glue := read(t, ws.glue)
	assert.Contains(t, glue, "set_axis")
	assert.NotContains(t, glue, "broken")

	assert.Equal(t, 2, logs.FilterMessage("skipping file").Len())
}

func TestRun_StrictPromotesWarnings(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"axis.h": axisHeader,
		"dup.h":  "void Foo(int a);\nvoid Foo(int b);\n",
	})

	paths := []string{ws.path("axis.h"), ws.path("dup.h")}

	summary, err := Run(context.Background(), newContext(t, nil), paths, Options{DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, summary.Failed())
	assert.Contains(t, summary.Output.Glue, "\"foo\"")

	strict := policy.Default().WithToggles(true, true, "")

	summary, err = Run(context.Background(), newContext(t, strict), paths, Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, summary.Failed(), 1)
	assert.Equal(t, ws.path("dup.h"), summary.Failed()[0].Path)
	assert.True(t, errors.Is(summary.Failed()[0].Err, diagnostic.ErrModelBuild))
	assert.Equal(t, []string{"duplicate_declaration"}, []string{summary.Failed()[0].Diags.Warnings[0].Code})
	assert.NotContains(t, summary.Output.Glue, "\"foo\"")

	assert.Equal(t, glueTemplate, read(t, ws.glue))
}

func TestRun_PerFileRegions(t *testing.T) {
	pf := &policy.File{Output: policy.OutputSection{
		GlueMarkers: policy.Markers{Start: "// <autogen:{file}>", End: "// </autogen:{file}>"},
	}}

	pol, err := policy.Compile(pf)
	require.NoError(t, err)

	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader, "reset.h": resetHeader})
	write(t, ws.glue, "// <autogen:reset.h>\n// </autogen:reset.h>\n// <autogen:axis.h>\n// </autogen:axis.h>\n")

	opts := Options{GlueFile: ws.glue}

	_, err = Run(context.Background(), newContext(t, pol), []string{ws.path("axis.h"), ws.path("reset.h")}, opts)
	require.NoError(t, err)

	glue := read(t, ws.glue)
	assert.Contains(t, glue, "// <autogen:reset.h>\nm.def(\"reset\"")
	assert.Contains(t, glue, "// <autogen:axis.h>\npy::enum_<ImAxis_>")
}

func TestRun_MissingMarkersKeepsSidecar(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader})
	write(t, ws.stub, "# nothing to see\n")

	summary, err := Run(context.Background(), newContext(t, nil), []string{ws.path("axis.h")}, ws.options())
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostic.ErrOutputSplice))

	assert.Equal(t, []string{ws.glue}, summary.Changed)
	assert.Equal(t, "# nothing to see\n", read(t, ws.stub))
	assert.Contains(t, read(t, ws.stub+".unspliced"), "class ImAxis(enum.IntEnum):")
}

func TestStale_ReportsOutdatedDestinations(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"axis.h": axisHeader})
	gc := newContext(t, nil)
	paths := []string{ws.path("axis.h")}
	opts := ws.options()

	dry := opts
	dry.DryRun = true

	summary, err := Run(context.Background(), gc, paths, dry)
	require.NoError(t, err)

	stale, err := Stale(gc, summary, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{ws.glue, ws.stub}, stale)
	assert.Equal(t, glueTemplate, read(t, ws.glue))

	_, err = Run(context.Background(), gc, paths, opts)
	require.NoError(t, err)

	stale, err = Stale(gc, summary, opts)
	require.NoError(t, err)
	assert.Empty(t, stale)
}
