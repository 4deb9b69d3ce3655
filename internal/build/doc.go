// Package build turns a syntax tree into the semantic model.
//
// The builder walks the tree once in document order. It keeps the scope
// stack balanced, attaches comments through the comments package, applies
// the policy's publish and exclusion filters and records enum renames in a
// replacement cache for the generator.
//
// A declaration that cannot be bounded (ERROR or MISSING nodes, a body
// without its closing brace) is skipped with a warning; the rest of the file
// still builds.
//
// API marker macros (IMGUI_API and friends) are not C++ the parser
// understands. StripMarkers blanks them before parsing without moving any
// byte, and the recorded positions decide which free functions are
// published.
package build
