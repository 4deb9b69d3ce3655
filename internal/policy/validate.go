package policy

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"

	"pyglue-generator/internal/common"
	"pyglue-generator/internal/diagnostic"
)

// SupportedVersions is the range of policy schema versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a policy file for problems that make it unusable. Every
// finding is a PolicyValidation error; the file should not be compiled when
// the result has errors.
func Validate(pf *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if pf == nil {
		addError(res, "policy_is_nil", "policy file is nil", "")
		return res
	}

	validateVersion(pf.Version, res)

	validatePatterns("exclude.functions", pf.Exclude.Functions, res)
	validatePatterns("exclude.declarations", pf.Exclude.Declarations, res)
	validatePatterns("exclude.classes", pf.Exclude.Classes, res)

	for _, p := range append(append([]string{}, pf.Publish.Prefixes...), pf.Publish.Suffixes...) {
		if !identPattern.MatchString(p) {
			addError(res, "invalid_marker_macro", fmt.Sprintf("publish marker %q is not an identifier", p), "publish")
		}
	}

	for _, name := range slices.Sorted(maps.Keys(pf.Numbers)) {
		if !identPattern.MatchString(name) {
			addError(res, "invalid_number_name", fmt.Sprintf("number macro %q is not an identifier", name), "numbers")
		}
	}

	for i := range pf.Templates {
		validateTemplate(i, &pf.Templates[i], res)
	}

	tables := []struct {
		name  string
		rules []MatchRuleDef
	}{
		{"adapt.variadic", pf.Adapt.Variadic},
		{"adapt.fixed_array", pf.Adapt.FixedArray},
		{"adapt.boxed", pf.Adapt.Boxed},
		{"adapt.buffer", pf.Adapt.Buffer},
		{"adapt.sizeof_default", pf.Adapt.SizeofDefault},
		{"adapt.promote", pf.Adapt.Promote},
	}
	for _, t := range tables {
		for i, r := range t.rules {
			where := fmt.Sprintf("%s[%d]", t.name, i)
			validatePatterns(where+".function", []string{r.Function}, res)
			validatePatterns(where+".param", []string{r.Param}, res)
			validatePatterns(where+".type", []string{r.Type}, res)
			validatePatterns(where+".count", []string{r.Count}, res)
		}
	}

	if pf.Output.ModuleVar != "" && !identPattern.MatchString(pf.Output.ModuleVar) {
		addError(res, "invalid_module_var",
			fmt.Sprintf("output.module_var %q is not a C++ identifier", pf.Output.ModuleVar), "output")
	}

	validateMarkers("output.glue_markers", pf.Output.GlueMarkers, res)
	validateMarkers("output.stub_markers", pf.Output.StubMarkers, res)

	if pf.Parser.Timeout != "" {
		if d, err := time.ParseDuration(pf.Parser.Timeout); err != nil || d <= 0 {
			addError(res, "invalid_timeout",
				fmt.Sprintf("parser.timeout %q is not a positive duration", pf.Parser.Timeout), "parser")
		}
	}

	return res
}

func validateVersion(version string, res *diagnostic.Diagnostics) {
	v, err := semver.NewVersion(version)
	if err != nil {
		addError(res, "invalid_version", fmt.Sprintf("version %q is not a semantic version: %v", version, err), "version")
		return
	}

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		panic(err)
	}

	if !constraint.Check(v) {
		addError(res, "unsupported_version",
			fmt.Sprintf("version %s is outside the supported range %s", v, SupportedVersions), "version")
	}
}

func validatePatterns(where string, patterns []string, res *diagnostic.Diagnostics) {
	for _, p := range patterns {
		if p == "" {
			continue
		}

		if _, err := regexp.Compile(p); err != nil {
			addError(res, "invalid_regex", fmt.Sprintf("%s: invalid regex %q: %v", where, p, err), where)
		}
	}
}

func validateTemplate(i int, t *TemplateDef, res *diagnostic.Diagnostics) {
	where := fmt.Sprintf("templates[%d]", i)

	if t.Match == "" {
		addError(res, "template_match_missing", where+": match is required", where)
	} else {
		validatePatterns(where+".match", []string{t.Match}, res)
	}

	if !t.Kind.IsValid() {
		addError(res, "invalid_template_kind", fmt.Sprintf("%s: unknown kind %q", where, t.Kind), where)
	}

	if !t.Naming.IsValid() {
		addError(res, "invalid_naming_scheme", fmt.Sprintf("%s: unknown naming scheme %q", where, t.Naming), where)
	}

	if t.Kind == TemplateClass && t.Naming == NamingNone {
		addError(res, "class_template_unnamed",
			where+": class templates need a naming scheme other than none so each specialization has a distinct name", where)
	}

	if len(t.Params) > 1 {
		addError(res, "multi_param_template",
			fmt.Sprintf("%s: templates with %d parameters are not supported", where, len(t.Params)), where)
	}

	if len(t.Types) == 0 {
		addError(res, "template_types_missing", where+": at least one type is required", where)
	}
}

func validateMarkers(where string, m Markers, res *diagnostic.Diagnostics) {
	if m.Start == "" || m.End == "" {
		addError(res, "marker_missing", where+": start and end markers are required", where)
		return
	}

	if m.Start == m.End {
		addError(res, "marker_ambiguous", where+": start and end markers must differ", where)
	}
}

func addError(res *diagnostic.Diagnostics, code, msg, where string) {
	res.AddError(diagnostic.KindPolicyValidation, code, msg, where, common.Span{})
}
