// Package scope tracks the nesting of namespaces, classes and enums while the
// syntax tree is walked.
package scope

import (
	"strings"

	"pyglue-generator/internal/common"
)

// Kind is the kind of an enclosing scope.
type Kind int

const (
	KindNamespace Kind = iota + 1
	KindClass
	KindEnum
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// Part is one level of the scope stack.
type Part struct {
	Kind Kind
	Name string
}

// Resolver is a stack of enclosing scopes. The zero value is ready to use.
type Resolver struct {
	stack []Part
}

// Enter pushes a scope.
func (r *Resolver) Enter(p Part) {
	r.stack = append(r.stack, p)
}

// Leave pops the innermost scope. Leaving with nothing entered is a
// programming error and panics.
func (r *Resolver) Leave() Part {
	if len(r.stack) == 0 {
		panic("scope: Leave called on an empty stack")
	}

	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	return top
}

// Depth returns the number of open scopes.
func (r *Resolver) Depth() int {
	return len(r.stack)
}

// Path returns the enclosing scope names, outermost first. Anonymous
// namespaces contribute no name.
func (r *Resolver) Path() []string {
	out := make([]string, 0, len(r.stack))
	for _, p := range r.stack {
		if p.Name != "" {
			out = append(out, p.Name)
		}
	}

	return out
}

// Parts returns a copy of the stack.
func (r *Resolver) Parts() []Part {
	return append([]Part(nil), r.stack...)
}

// Qualify returns name prefixed with the current path ("ns::Cls::name").
func (r *Resolver) Qualify(name string) string {
	return common.JoinScope(append(r.Path(), name))
}

// InClass reports whether the innermost scope is a class or struct.
func (r *Resolver) InClass() bool {
	top, ok := common.Last(r.stack)
	return ok && top.Kind == KindClass
}

// String renders the stack for debugging.
func (r *Resolver) String() string {
	parts := make([]string, 0, len(r.stack))
	for _, p := range r.stack {
		parts = append(parts, p.Kind.String()+" "+p.Name)
	}

	return strings.Join(parts, " > ")
}
