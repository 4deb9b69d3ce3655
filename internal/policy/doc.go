// Package policy provides the policy schema, YAML/TOML parsing, validation
// and compilation for the glue generator.
//
// The policy decides what is exposed and how signatures are translated. Every
// field has a default; an absent filter accepts everything.
//
// # Schema Overview
//
//	version: "1.0.0"
//	publish:
//	  prefixes: [IMGUI_API]          # API marker macros before free functions
//	  suffixes: []                   # API marker macros after the declarator
//	exclude:
//	  functions: ["^Internal"]       # function and method names
//	  declarations: ["^_"]           # fields, variables, enum constants
//	  classes: ["Storage$"]          # struct and class names
//	numbers:
//	  IM_COL_COUNT: 4                # named macros usable as array sizes
//	templates:
//	  - match: "^ImVector$"
//	    kind: class
//	    types: [int, float]
//	    naming: camel-suffix         # snake-prefix|snake-suffix|camel-prefix|camel-suffix|none
//	adapt:
//	  variadic: [{}]                 # drop "..." tails
//	  fixed_array: [{type: "^(float|int)$"}]
//	  boxed: [{type: "^(bool|int|float|double)$"}]
//	  buffer: [{param: "^values$", count: "^count$"}]
//	  sizeof_default: [{}]
//	  promote: [{param: "^out_"}]
//	naming:
//	  snake_case: true
//	  strip_enum_prefix: true
//	comments:
//	  regions: true
//	output:
//	  module_var: m
//	  glue_markers: {start: "// <autogen:glue>", end: "// </autogen:glue>"}
//	  stub_markers: {start: "# <autogen:stub>", end: "# </autogen:stub>"}
//	parser:
//	  command: ""                    # external tree producer; in-process tree-sitter when empty
//	  timeout: 30s
//	diagnostics:
//	  quiet: false
//	  strict: false
//
// TOML documents use the same keys.
//
// # Rule Tables
//
// Each adapt table is an ordered list of rules. A rule matches when every
// regex it sets matches (function name, parameter name, parameter type text,
// and for buffers the count parameter name). The first matching rule wins.
// An absent table takes the documented default; an explicit empty list
// disables the adaptation.
package policy
