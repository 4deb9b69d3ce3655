// Package naming converts C++ identifiers into Python identifiers.
//
// Conversion tokenizes CamelCase the same way everywhere (acronyms stay
// together, a lower-to-upper transition starts a token) so that function
// names, enum constants and template specialization names agree.
package naming
