// Package discover finds C++ headers to generate bindings for.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	ignore "github.com/sabhiram/go-gitignore"
)

// HeaderExtensions are the file extensions treated as headers.
var HeaderExtensions = []string{".h", ".hpp", ".hh", ".hxx"}

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"build":        {},
	"dist":         {},
	"venv":         {},
	".venv":        {},
}

// IsHeader reports whether path has a header extension.
func IsHeader(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, h := range HeaderExtensions {
		if ext == h {
			return true
		}
	}

	return false
}

// Headers returns the headers under root, sorted, skipping hidden entries,
// build directories and anything the root .gitignore excludes. Paths are
// joined onto root.
func Headers(root string) ([]string, error) {
	gi := loadGitignore(root)

	var results []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}

			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if rel, relErr := filepath.Rel(root, path); relErr == nil && gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 || !IsHeader(name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, path)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	sort.Strings(results)

	return results, nil
}

// Expand turns command line inputs into header paths. Files are kept in the
// order given; directories are replaced by their headers. Duplicates are
// dropped, keeping the first occurrence.
func Expand(inputs []string) ([]string, error) {
	var out []string

	seen := map[string]struct{}{}
	add := func(p string) {
		key := filepath.Clean(p)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", in)
		}

		if !info.IsDir() {
			add(in)
			continue
		}

		headers, err := Headers(in)
		if err != nil {
			return nil, err
		}

		for _, h := range headers {
			add(h)
		}
	}

	return out, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	return gi
}
