package policy

import (
	"pyglue-generator/internal/common"
)

// File represents the root of a policy document.
type File struct {
	// Version of the policy schema.
	Version string `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`

	Publish     PublishSection     `yaml:"publish,omitempty" toml:"publish,omitempty" json:"publish"`
	Exclude     ExcludeSection     `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude"`
	Numbers     map[string]int     `yaml:"numbers,omitempty" toml:"numbers,omitempty" json:"numbers,omitempty"`
	Templates   []TemplateDef      `yaml:"templates,omitempty" toml:"templates,omitempty" json:"templates,omitempty"`
	Adapt       AdaptSection       `yaml:"adapt,omitempty" toml:"adapt,omitempty" json:"adapt"`
	Naming      NamingSection      `yaml:"naming,omitempty" toml:"naming,omitempty" json:"naming"`
	Comments    CommentsSection    `yaml:"comments,omitempty" toml:"comments,omitempty" json:"comments"`
	Output      OutputSection      `yaml:"output,omitempty" toml:"output,omitempty" json:"output"`
	Parser      ParserSection      `yaml:"parser,omitempty" toml:"parser,omitempty" json:"parser"`
	Diagnostics DiagnosticsSection `yaml:"diagnostics,omitempty" toml:"diagnostics,omitempty" json:"diagnostics"`
}

// PublishSection lists API marker macros. A free function is published when
// no marker is configured or when one of them decorates it.
type PublishSection struct {
	Prefixes StringOrArray `yaml:"prefixes,omitempty" toml:"prefixes,omitempty" json:"prefixes,omitempty"`
	Suffixes StringOrArray `yaml:"suffixes,omitempty" toml:"suffixes,omitempty" json:"suffixes,omitempty"`
}

// ExcludeSection holds name exclusion regexes.
type ExcludeSection struct {
	Functions    StringOrArray `yaml:"functions,omitempty" toml:"functions,omitempty" json:"functions,omitempty"`
	Declarations StringOrArray `yaml:"declarations,omitempty" toml:"declarations,omitempty" json:"declarations,omitempty"`
	Classes      StringOrArray `yaml:"classes,omitempty" toml:"classes,omitempty" json:"classes,omitempty"`
}

// TemplateDef binds a template name pattern to concrete types.
type TemplateDef struct {
	// Match is a regex over the unqualified template name.
	Match string `yaml:"match" toml:"match" json:"match"`
	// Kind is "function" or "class".
	Kind TemplateKind `yaml:"kind" toml:"kind" json:"kind"`
	// Params optionally names the template parameters. Only one is supported.
	Params []string `yaml:"params,omitempty" toml:"params,omitempty" json:"params,omitempty"`
	// Types are the concrete substitutions, one emitted declaration each.
	Types []string `yaml:"types" toml:"types" json:"types"`
	// Naming is the scheme used to derive specialization names.
	Naming NamingScheme `yaml:"naming" toml:"naming" json:"naming"`
}

// AdaptSection holds the adaptation rule tables. A nil table takes its
// default; an empty table disables the adaptation.
type AdaptSection struct {
	Variadic      []MatchRuleDef `yaml:"variadic,omitempty" toml:"variadic,omitempty" json:"variadic,omitempty"`
	FixedArray    []MatchRuleDef `yaml:"fixed_array,omitempty" toml:"fixed_array,omitempty" json:"fixed_array,omitempty"`
	Boxed         []MatchRuleDef `yaml:"boxed,omitempty" toml:"boxed,omitempty" json:"boxed,omitempty"`
	Buffer        []MatchRuleDef `yaml:"buffer,omitempty" toml:"buffer,omitempty" json:"buffer,omitempty"`
	SizeofDefault []MatchRuleDef `yaml:"sizeof_default,omitempty" toml:"sizeof_default,omitempty" json:"sizeof_default,omitempty"`
	Promote       []MatchRuleDef `yaml:"promote,omitempty" toml:"promote,omitempty" json:"promote,omitempty"`
}

// MatchRuleDef is one row of an adaptation table. Empty fields match anything.
type MatchRuleDef struct {
	Function string `yaml:"function,omitempty" toml:"function,omitempty" json:"function,omitempty"`
	Param    string `yaml:"param,omitempty" toml:"param,omitempty" json:"param,omitempty"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Count    string `yaml:"count,omitempty" toml:"count,omitempty" json:"count,omitempty"`
}

// NamingSection controls identifier conversion.
type NamingSection struct {
	SnakeCase       *bool `yaml:"snake_case,omitempty" toml:"snake_case,omitempty" json:"snake_case,omitempty"`
	StripEnumPrefix *bool `yaml:"strip_enum_prefix,omitempty" toml:"strip_enum_prefix,omitempty" json:"strip_enum_prefix,omitempty"`
}

// CommentsSection selects the comment grouping strategy inside bodies.
type CommentsSection struct {
	Regions *bool `yaml:"regions,omitempty" toml:"regions,omitempty" json:"regions,omitempty"`
}

// Markers is a start/end sentinel pair.
type Markers struct {
	Start string `yaml:"start" toml:"start" json:"start"`
	End   string `yaml:"end" toml:"end" json:"end"`
}

// OutputSection configures the generated text.
type OutputSection struct {
	ModuleVar   string  `yaml:"module_var,omitempty" toml:"module_var,omitempty" json:"module_var,omitempty"`
	GlueMarkers Markers `yaml:"glue_markers,omitempty" toml:"glue_markers,omitempty" json:"glue_markers"`
	StubMarkers Markers `yaml:"stub_markers,omitempty" toml:"stub_markers,omitempty" json:"stub_markers"`
}

// ParserSection configures the syntax tree collaborator.
type ParserSection struct {
	Command string `yaml:"command,omitempty" toml:"command,omitempty" json:"command,omitempty"`
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
}

// DiagnosticsSection holds reporting toggles.
type DiagnosticsSection struct {
	Quiet  bool `yaml:"quiet,omitempty" toml:"quiet,omitempty" json:"quiet,omitempty"`
	Strict bool `yaml:"strict,omitempty" toml:"strict,omitempty" json:"strict,omitempty"`
}

// TemplateKind distinguishes function and class templates.
type TemplateKind string

const (
	TemplateFunction TemplateKind = "function"
	TemplateClass    TemplateKind = "class"
)

// IsValid returns true if the kind is a recognized value.
func (k TemplateKind) IsValid() bool {
	return k == TemplateFunction || k == TemplateClass
}

// NamingScheme derives a specialization name from the template name and a type.
type NamingScheme string

const (
	NamingSnakePrefix NamingScheme = "snake-prefix"
	NamingSnakeSuffix NamingScheme = "snake-suffix"
	NamingCamelPrefix NamingScheme = "camel-prefix"
	NamingCamelSuffix NamingScheme = "camel-suffix"
	NamingNone        NamingScheme = "none"
)

// IsValid returns true if the scheme is a recognized value.
func (s NamingScheme) IsValid() bool {
	switch s {
	case NamingSnakePrefix, NamingSnakeSuffix, NamingCamelPrefix, NamingCamelSuffix, NamingNone:
		return true
	default:
		return false
	}
}

// String returns the scheme name.
func (s NamingScheme) String() string {
	if s == "" {
		return common.UnknownStr
	}

	return string(s)
}
