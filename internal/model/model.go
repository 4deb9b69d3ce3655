package model

// Model is the semantic model of one header.
type Model struct {
	// File is the header path as given on input.
	File string
	// Decls are the top-level declarations in source order.
	Decls []Decl
}

// Walk visits every declaration in document order, parents before children.
// Function parameters are visited after their function. Returning false from
// fn skips the children of that declaration.
func Walk(decls []Decl, fn func(Decl) bool) {
	for _, d := range decls {
		if !fn(d) {
			continue
		}

		if f, ok := d.(*Function); ok {
			for _, p := range f.Params {
				fn(p)
			}

			continue
		}

		Walk(Children(d), fn)
	}
}

// Count returns the number of declarations that satisfy pred.
func (m *Model) Count(pred func(Decl) bool) int {
	n := 0

	Walk(m.Decls, func(d Decl) bool {
		if pred(d) {
			n++
		}

		return true
	})

	return n
}

// Find returns the first declaration with the given qualified name.
func (m *Model) Find(qualified string) Decl {
	var found Decl

	Walk(m.Decls, func(d Decl) bool {
		if found == nil && d.Info().QualifiedName() == qualified {
			found = d
		}

		return found == nil
	})

	return found
}
