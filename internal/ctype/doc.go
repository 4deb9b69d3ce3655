// Package ctype parses the textual C++ type expressions carried by the
// semantic model and classifies their primitive kinds.
//
// Only the shapes the generator adapts are understood: cv-qualified base
// types, pointers, references and fixed array dimensions. Anything else is
// kept verbatim in Expr.Base.
package ctype
