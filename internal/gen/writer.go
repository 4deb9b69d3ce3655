package gen

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/policy"
)

// File permission used when a destination does not report its own.
const filePerm = 0o644

// FilePlaceholder in a marker is replaced by the input file's base name, so
// each header gets its own region.
const FilePlaceholder = "{file}"

// HasFilePlaceholder reports whether markers are per input file.
func HasFilePlaceholder(m policy.Markers) bool {
	return strings.Contains(m.Start, FilePlaceholder) || strings.Contains(m.End, FilePlaceholder)
}

// ForFile expands the file placeholder of a marker pair.
func ForFile(m policy.Markers, file string) policy.Markers {
	return policy.Markers{
		Start: strings.ReplaceAll(m.Start, FilePlaceholder, file),
		End:   strings.ReplaceAll(m.End, FilePlaceholder, file),
	}
}

// SpliceText replaces the lines between the first start marker line of
// content and the first end marker line after it with text. The marker lines
// are kept and later marker pairs are left as they are. With preserveIndent every
// non-empty line of text is indented like the start marker.
func SpliceText(content string, markers policy.Markers, text string, preserveIndent bool) (string, error) {
	if markers.Start == "" || markers.End == "" {
		return "", diagnostic.Mark(errors.New("output markers are not configured"), diagnostic.KindOutputSplice)
	}

	lines := strings.SplitAfter(content, "\n")

	start, end := -1, -1

	for i, l := range lines {
		if start < 0 {
			if strings.Contains(l, markers.Start) {
				start = i
			}

			continue
		}

		if strings.Contains(l, markers.End) {
			end = i
			break
		}
	}

	if start < 0 {
		return "", diagnostic.Mark(errors.Newf("start marker %q not found", markers.Start), diagnostic.KindOutputSplice)
	}

	if end < 0 {
		return "", diagnostic.Mark(errors.Newf("end marker %q not found after the start marker", markers.End),
			diagnostic.KindOutputSplice)
	}

	var indent string
	if preserveIndent {
		marker := lines[start]
		indent = marker[:len(marker)-len(strings.TrimLeft(marker, " \t"))]
	}

	var b strings.Builder

	for _, l := range lines[:start+1] {
		b.WriteString(l)
	}

	if !strings.HasSuffix(lines[start], "\n") {
		b.WriteByte('\n')
	}

	if text != "" {
		for _, l := range strings.SplitAfter(strings.TrimRight(text, "\n")+"\n", "\n") {
			if strings.TrimSpace(l) != "" {
				b.WriteString(indent)
			} else {
				l = strings.TrimLeft(l, " \t")
			}

			b.WriteString(l)
		}
	}

	for _, l := range lines[end:] {
		b.WriteString(l)
	}

	return b.String(), nil
}

// Region is generated text bound for one marker pair.
type Region struct {
	Markers policy.Markers
	Text    string
}

// Splice rewrites the marker region of the file at path. The file is written
// only when its content changes. When the region cannot be located the
// generated text is kept in a sidecar next to path.
func Splice(path string, markers policy.Markers, text string, preserveIndent bool) (bool, error) {
	return SpliceRegions(path, []Region{{Markers: markers, Text: text}}, preserveIndent)
}

// SpliceRegions is Splice for several marker pairs of one file. Either every
// region is replaced or the file is left untouched.
func SpliceRegions(path string, regions []Region, preserveIndent bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, diagnostic.Mark(errors.Wrapf(err, "reading %s", path), diagnostic.KindOutputSplice)
	}

	spliced := string(data)

	for _, r := range regions {
		spliced, err = SpliceText(spliced, r.Markers, r.Text, preserveIndent)
		if err != nil {
			err = errors.Wrapf(err, "splicing %s", path)

			texts := make([]string, 0, len(regions))
			for _, r := range regions {
				texts = append(texts, r.Text)
			}

			if sidecarErr := writeUnspliced(path, strings.Join(texts, "\n")); sidecarErr == nil {
				err = errors.WithHintf(err, "the generated text was kept in %s", unsplicedPath(path))
			}

			return false, err
		}
	}

	if bytes.Equal(data, []byte(spliced)) {
		return false, nil
	}

	perm := os.FileMode(filePerm)
	if st, statErr := os.Stat(path); statErr == nil {
		perm = st.Mode().Perm()
	}

	if err := os.WriteFile(path, []byte(spliced), perm); err != nil {
		return false, diagnostic.Mark(errors.Wrapf(err, "writing %s", path), diagnostic.KindOutputSplice)
	}

	return true, nil
}

func unsplicedPath(path string) string {
	return path + ".unspliced"
}

// writeUnspliced keeps text that could not be spliced. This is best-effort
// and should never make generation fail harder.
func writeUnspliced(path, text string) error {
	if path == "" || text == "" {
		return nil
	}

	return os.WriteFile(unsplicedPath(path), []byte(text), filePerm)
}
