package policy

import (
	"regexp"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// Patterns is an ordered list of compiled regexes.
type Patterns []*regexp.Regexp

// Match returns the index of the first pattern matching s.
func (p Patterns) Match(s string) (int, bool) {
	for i, re := range p {
		if re.MatchString(s) {
			return i, true
		}
	}

	return -1, false
}

// Rule is a compiled MatchRuleDef. A nil regex matches anything.
type Rule struct {
	Index    int
	Function *regexp.Regexp
	Param    *regexp.Regexp
	Type     *regexp.Regexp
	Count    *regexp.Regexp
}

// Subject is what a rule is matched against.
type Subject struct {
	Function string
	Param    string
	Type     string
}

// Matches reports whether every set regex of the rule matches the subject.
func (r Rule) Matches(s Subject) bool {
	return matchOpt(r.Function, s.Function) && matchOpt(r.Param, s.Param) && matchOpt(r.Type, s.Type)
}

// MatchesCount reports whether name is accepted as the count parameter.
// A rule without a count regex accepts any name.
func (r Rule) MatchesCount(name string) bool {
	return matchOpt(r.Count, name)
}

func matchOpt(re *regexp.Regexp, s string) bool {
	return re == nil || re.MatchString(s)
}

// RuleTable is an ordered rule list evaluated first-match-wins.
type RuleTable []Rule

// Match returns the first rule matching the subject.
func (t RuleTable) Match(s Subject) (Rule, bool) {
	for _, r := range t {
		if r.Matches(s) {
			return r, true
		}
	}

	return Rule{}, false
}

// Adaptations holds one rule table per adaptation.
type Adaptations struct {
	Variadic      RuleTable
	FixedArray    RuleTable
	Boxed         RuleTable
	Buffer        RuleTable
	SizeofDefault RuleTable
	Promote       RuleTable
}

// TemplateSpec is a compiled TemplateDef.
type TemplateSpec struct {
	Index  int
	Match  *regexp.Regexp
	Kind   TemplateKind
	Params []string
	Types  []string
	Naming NamingScheme
}

// Policy is the compiled, immutable form of a policy file.
type Policy struct {
	Version *semver.Version

	PublishPrefixes []string
	PublishSuffixes []string

	ExcludeFunctions    Patterns
	ExcludeDeclarations Patterns
	ExcludeClasses      Patterns

	Numbers   map[string]int
	Templates []TemplateSpec
	Adapt     Adaptations

	SnakeCase       bool
	StripEnumPrefix bool
	Regions         bool

	ModuleVar   string
	GlueMarkers Markers
	StubMarkers Markers

	ParserCommand string
	ParserTimeout time.Duration

	Quiet  bool
	Strict bool

	hash uint64
}

// Compile validates a policy file and compiles it. Defaults are applied to a
// copy, so hand-built files may leave fields empty.
func Compile(pf *File) (*Policy, error) {
	if pf == nil {
		return nil, Validate(nil).Error()
	}

	cp := *pf
	cp.Templates = slices.Clone(pf.Templates)
	ApplyDefaults(&cp)

	if err := Validate(&cp).Error(); err != nil {
		return nil, errors.Wrap(err, "invalid policy")
	}

	p := &Policy{
		Version:             semver.MustParse(cp.Version),
		PublishPrefixes:     slices.Clone(cp.Publish.Prefixes),
		PublishSuffixes:     slices.Clone(cp.Publish.Suffixes),
		ExcludeFunctions:    compilePatterns(cp.Exclude.Functions),
		ExcludeDeclarations: compilePatterns(cp.Exclude.Declarations),
		ExcludeClasses:      compilePatterns(cp.Exclude.Classes),
		Numbers:             make(map[string]int, len(cp.Numbers)),
		Adapt: Adaptations{
			Variadic:      compileRules(cp.Adapt.Variadic),
			FixedArray:    compileRules(cp.Adapt.FixedArray),
			Boxed:         compileRules(cp.Adapt.Boxed),
			Buffer:        compileRules(cp.Adapt.Buffer),
			SizeofDefault: compileRules(cp.Adapt.SizeofDefault),
			Promote:       compileRules(cp.Adapt.Promote),
		},
		SnakeCase:       *cp.Naming.SnakeCase,
		StripEnumPrefix: *cp.Naming.StripEnumPrefix,
		Regions:         *cp.Comments.Regions,
		ModuleVar:       cp.Output.ModuleVar,
		GlueMarkers:     cp.Output.GlueMarkers,
		StubMarkers:     cp.Output.StubMarkers,
		ParserCommand:   cp.Parser.Command,
		Quiet:           cp.Diagnostics.Quiet,
		Strict:          cp.Diagnostics.Strict,
		hash:            xxhash.Sum64(canonical(&cp)),
	}

	for k, v := range cp.Numbers {
		p.Numbers[k] = v
	}

	p.ParserTimeout, _ = time.ParseDuration(cp.Parser.Timeout)

	for i, t := range cp.Templates {
		p.Templates = append(p.Templates, TemplateSpec{
			Index:  i,
			Match:  regexp.MustCompile(t.Match),
			Kind:   t.Kind,
			Params: slices.Clone(t.Params),
			Types:  slices.Clone(t.Types),
			Naming: t.Naming,
		})
	}

	return p, nil
}

// Default returns the policy with every documented default and no filters.
func Default() *Policy {
	p, err := Compile(&File{})
	if err != nil {
		panic(errors.Wrap(err, "default policy"))
	}

	return p
}

// Hash is a stable digest of the policy contents.
func (p *Policy) Hash() uint64 {
	return p.hash
}

// WithToggles returns a copy with the diagnostic toggles and parser command
// overridden. The hash is unchanged since the toggles do not affect output.
func (p *Policy) WithToggles(strict, quiet bool, parserCommand string) *Policy {
	cp := *p
	cp.Strict = strict
	cp.Quiet = quiet
	cp.ParserCommand = parserCommand

	return &cp
}

// ExcludedFunction reports whether a function or method name is excluded.
func (p *Policy) ExcludedFunction(name string) bool {
	_, ok := p.ExcludeFunctions.Match(name)
	return ok
}

// ExcludedDeclaration reports whether a field, variable or constant is excluded.
func (p *Policy) ExcludedDeclaration(name string) bool {
	_, ok := p.ExcludeDeclarations.Match(name)
	return ok
}

// ExcludedClass reports whether a struct, class or enum name is excluded.
func (p *Policy) ExcludedClass(name string) bool {
	_, ok := p.ExcludeClasses.Match(name)
	return ok
}

// HasPublishMarkers reports whether publish filtering is active.
func (p *Policy) HasPublishMarkers() bool {
	return len(p.PublishPrefixes) > 0 || len(p.PublishSuffixes) > 0
}

// Number resolves a named numeric macro.
func (p *Policy) Number(name string) (int, bool) {
	v, ok := p.Numbers[name]
	return v, ok
}

// Template returns the first spec whose regex matches name and whose kind matches.
func (p *Policy) Template(name string, kind TemplateKind) (TemplateSpec, bool) {
	for _, t := range p.Templates {
		if t.Kind == kind && t.Match.MatchString(name) {
			return t, true
		}
	}

	return TemplateSpec{}, false
}

func compilePatterns(src []string) Patterns {
	out := make(Patterns, 0, len(src))
	for _, s := range src {
		if s == "" {
			continue
		}

		out = append(out, regexp.MustCompile(s))
	}

	return out
}

func compileRules(defs []MatchRuleDef) RuleTable {
	out := make(RuleTable, 0, len(defs))
	for i, d := range defs {
		out = append(out, Rule{
			Index:    i,
			Function: compileOpt(d.Function),
			Param:    compileOpt(d.Param),
			Type:     compileOpt(d.Type),
			Count:    compileOpt(d.Count),
		})
	}

	return out
}

func compileOpt(s string) *regexp.Regexp {
	if s == "" {
		return nil
	}

	return regexp.MustCompile(s)
}
