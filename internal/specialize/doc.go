// Package specialize turns template declarations into the concrete
// declarations configured by the policy.
//
// Templates are opt-in: a template without a matching policy entry is
// skipped with a note. Only single-parameter templates are supported. Each
// configured type yields one declaration whose type texts have the template
// parameter replaced as a whole word and whose name follows the entry's
// naming scheme. The C++ spelling (Name<type>) is kept in Base.Spelling for
// the glue.
package specialize
