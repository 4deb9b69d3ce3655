package gen

import (
	"fmt"
	"slices"
	"strings"

	"pyglue-generator/internal/ctype"
)

const typingImport = "from typing import "

// Join concatenates outputs in order. Boxes and imports are merged.
func Join(outs []Output) Output {
	var (
		joined  Output
		glue    []string
		stub    []string
		imports []string
		boxes   = map[string]Box{}
	)

	for _, o := range outs {
		if o.Glue != "" {
			glue = append(glue, o.Glue)
		}

		if o.Stub != "" {
			stub = append(stub, o.Stub)
		}

		imports = append(imports, o.Imports...)

		for _, b := range o.Boxes {
			boxes[b.Name] = b
		}
	}

	joined.Glue = strings.Join(glue, "\n")
	joined.Stub = strings.Join(stub, "\n")
	joined.Imports = mergeImports(imports)

	for _, b := range boxes {
		joined.Boxes = append(joined.Boxes, b)
	}

	slices.SortFunc(joined.Boxes, func(a, b Box) int { return strings.Compare(a.Name, b.Name) })

	return joined
}

// ClaimBoxes drops from each output the boxes an earlier output already
// defines, so that regions spliced into one module define each box once.
func ClaimBoxes(outs []Output) []Output {
	seen := map[string]bool{}
	res := make([]Output, len(outs))

	for i, o := range outs {
		res[i] = o
		res[i].Boxes = nil

		for _, b := range o.Boxes {
			if !seen[b.Name] {
				seen[b.Name] = true
				res[i].Boxes = append(res[i].Boxes, b)
			}
		}
	}

	return res
}

// GlueText is the glue region content: box definitions followed by the glue.
func (o Output) GlueText(moduleVar string) string {
	var b strings.Builder

	for _, box := range o.Boxes {
		fmt.Fprintf(&b, "struct %s { %s value{}; };\n", box.Name, box.CType)
		fmt.Fprintf(&b, "py::class_<%s>(%s, %s)\n", box.Name, moduleVar, cppString(box.Name))
		fmt.Fprintf(&b, "    .def(py::init<%s>(), py::arg(\"value\") = %s{})\n", box.CType, box.CType)
		fmt.Fprintf(&b, "    .def_readwrite(\"value\", &%s::value);\n", box.Name)
	}

	if b.Len() > 0 && o.Glue != "" {
		b.WriteByte('\n')
	}

	b.WriteString(o.Glue)

	return b.String()
}

// StubText is the stub region content: imports, box classes and the stub.
func (o Output) StubText() string {
	var parts []string

	if len(o.Imports) > 0 {
		parts = append(parts, strings.Join(o.Imports, "\n")+"\n")
	}

	for _, box := range o.Boxes {
		py := ctype.KindOf(box.CType).PyType()
		parts = append(parts, fmt.Sprintf("class %s:\n    value: %s\n    def __init__(self, value: %s = ...) -> None: ...\n",
			box.Name, py, py))
	}

	if o.Stub != "" {
		parts = append(parts, o.Stub)
	}

	return strings.Join(parts, "\n")
}

// mergeImports dedupes import lines. Plain imports come first, sorted, then
// one combined typing import.
func mergeImports(lines []string) []string {
	var (
		plain  []string
		typing []string
	)

	for _, l := range lines {
		if names, ok := strings.CutPrefix(l, typingImport); ok {
			for _, n := range strings.Split(names, ",") {
				typing = append(typing, strings.TrimSpace(n))
			}

			continue
		}

		plain = append(plain, l)
	}

	slices.Sort(plain)
	plain = slices.Compact(plain)

	slices.Sort(typing)
	typing = slices.Compact(typing)

	if len(typing) > 0 {
		plain = append(plain, typingImport+strings.Join(typing, ", "))
	}

	return plain
}
