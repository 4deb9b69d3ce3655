package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "implot.h", "")
	writeFile(t, dir, "backends/imgui_impl.hpp", "")
	writeFile(t, dir, "detail/internal.hh", "")
	writeFile(t, dir, "implot.cpp", "")
	writeFile(t, dir, ".hidden.h", "")
	writeFile(t, dir, "build/generated.h", "")
	writeFile(t, dir, ".cache/x.h", "")

	headers, err := Headers(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "backends", "imgui_impl.hpp"),
		filepath.Join(dir, "detail", "internal.hh"),
		filepath.Join(dir, "implot.h"),
	}, headers)
}

func TestHeaders_Gitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "vendor/\n*_internal.h\n")
	writeFile(t, dir, "implot.h", "")
	writeFile(t, dir, "implot_internal.h", "")
	writeFile(t, dir, "vendor/lib.h", "")

	headers, err := Headers(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "implot.h")}, headers)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	b := writeFile(t, dir, "b.h", "")
	writeFile(t, dir, "sub/a.h", "")
	writeFile(t, dir, "sub/c.hxx", "")

	got, err := Expand([]string{b, filepath.Join(dir, "sub"), b})
	require.NoError(t, err)
	assert.Equal(t, []string{b, filepath.Join(dir, "sub", "a.h"), filepath.Join(dir, "sub", "c.hxx")}, got)

	_, err = Expand([]string{filepath.Join(dir, "missing.h")})
	assert.Error(t, err)
}

func TestIsHeader(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"a.h": true, "a.HPP": true, "a.hh": true, "a.hxx": true,
		"a.cpp": false, "a": false, "a.pyi": false,
	} {
		assert.Equal(t, want, IsHeader(path), path)
	}
}
