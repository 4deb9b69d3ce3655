// Package model defines the semantic model built from one C++ header.
//
// Declarations form a closed union: the Decl interface can only be
// implemented inside this package, so consumers switch over the concrete
// types (*Function, *Struct, *Enum, *Namespace, *Parameter, *EnumConstant,
// *Variable, *Region) and a new variant surfaces at every switch.
//
// A Model is built once and never modified afterwards. Code that needs a
// variant of a declaration (template specialization) clones it first.
package model
