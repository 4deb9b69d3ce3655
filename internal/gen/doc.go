// Package gen renders a semantic model into pybind11 glue and .pyi stubs.
//
// Rendering is pure: Render lowers the model (templates specialized,
// parameters adapted, names converted, namespaces flattened) and feeds the
// result to two backends that walk it in the same order.
//
// Glue patterns:
//   - Direct registration of a function pointer, py::overload_cast for overloads
//   - Lambdas for adapted signatures (fixed arrays, boxes, buffers, outputs)
//   - py::class_ and py::enum_ bound to locals that members are registered on
//   - Box helper structs for mutable scalars, defined once per module
//
// Splice writes generated text between marker lines of an existing file, and
// RenderCache memoizes renders across watch iterations.
package gen
