package specialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
)

func compile(t *testing.T, templates ...policy.TemplateDef) *policy.Policy {
	t.Helper()

	pol, err := policy.Compile(&policy.File{Templates: templates})
	require.NoError(t, err)

	return pol
}

func sumTemplate() *model.Function {
	return &model.Function{
		Base:       model.Base{Name: "Sum", Scope: []string{"ImPlot"}, TypeText: "T"},
		ReturnType: "T",
		Params: []*model.Parameter{
			{Base: model.Base{Name: "values", Scope: []string{"ImPlot", "Sum"}, TypeText: "const T *"}},
			{Base: model.Base{Name: "count", Scope: []string{"ImPlot", "Sum"}, TypeText: "int"}, Index: 1},
		},
		TemplateParams: []string{"T"},
	}
}

func TestResolve_Function(t *testing.T) {
	pol := compile(t, policy.TemplateDef{Match: "^Sum$", Types: []string{"float", "double"}})
	tmpl := sumTemplate()

	out, diags := Resolve(tmpl, pol)
	assert.Zero(t, diags.Len())
	require.Len(t, out, 2)

	f := out[0].(*model.Function)
	assert.Equal(t, "Sum_float", f.Name)
	assert.Equal(t, "ImPlot::Sum<float>", f.CppName())
	assert.Equal(t, "float", f.ReturnType)
	assert.Equal(t, "const float *", f.Params[0].TypeText)
	assert.Equal(t, "int", f.Params[1].TypeText)
	assert.False(t, f.IsTemplate())

	d := out[1].(*model.Function)
	assert.Equal(t, "Sum_double", d.Name)
	assert.Equal(t, "const double *", d.Params[0].TypeText)

	assert.Equal(t, "const T *", tmpl.Params[0].TypeText, "template must not be modified")
	assert.Equal(t, "Sum", tmpl.Name)
}

func TestResolve_NoneKeepsNameForFunctions(t *testing.T) {
	pol := compile(t, policy.TemplateDef{Match: "^Sum$", Types: []string{"int", "ImVec2*"}, Naming: policy.NamingNone})

	out, _ := Resolve(sumTemplate(), pol)
	require.Len(t, out, 2)
	assert.Equal(t, "Sum", out[0].Info().Name)
	assert.Equal(t, "Sum", out[1].Info().Name)
	assert.Equal(t, "const ImVec2 **", out[1].(*model.Function).Params[0].TypeText)
	assert.NotEqual(t, model.Identity(out[0]), model.Identity(out[1]))
}

func TestResolve_Class(t *testing.T) {
	pol := compile(t, policy.TemplateDef{
		Match: "^ImVector$", Kind: policy.TemplateClass, Types: []string{"int"}, Naming: policy.NamingCamelSuffix,
	})

	vec := &model.Struct{
		Base:           model.Base{Name: "ImVector"},
		TemplateParams: []string{"T"},
		Children: []model.Decl{
			&model.Function{
				Base:        model.Base{Name: "ImVector", Scope: []string{"ImVector"}},
				Constructor: true,
				Owner:       "ImVector",
			},
			&model.Function{
				Base:       model.Base{Name: "push_back", Scope: []string{"ImVector"}, TypeText: "void"},
				ReturnType: "void",
				Owner:      "ImVector",
				Params: []*model.Parameter{
					{Base: model.Base{Name: "v", Scope: []string{"ImVector", "push_back"}, TypeText: "const T &"}},
				},
			},
			&model.Variable{Base: model.Base{Name: "Data", Scope: []string{"ImVector"}, TypeText: "T *"}},
		},
	}

	out, diags := Resolve(vec, pol)
	assert.Zero(t, diags.Len())
	require.Len(t, out, 1)

	s := out[0].(*model.Struct)
	assert.Equal(t, "ImVectorInt", s.Name)
	assert.Equal(t, "ImVector<int>", s.CppName())

	ctor := s.Children[0].(*model.Function)
	assert.Equal(t, "ImVectorInt", ctor.Name)
	assert.Equal(t, "ImVector<int>", ctor.Owner)

	push := s.Children[1].(*model.Function)
	assert.Equal(t, []string{"ImVectorInt"}, push.Scope)
	assert.Equal(t, "const int &", push.Params[0].TypeText)
	assert.Equal(t, []string{"ImVectorInt", "push_back"}, push.Params[0].Scope)

	assert.Equal(t, "int *", s.Children[2].Info().TypeText)
	assert.Equal(t, []string{"ImVector"}, vec.Children[2].Info().Scope)
}

func TestResolve_Diagnostics(t *testing.T) {
	pol := compile(t, policy.TemplateDef{Match: "^Sum$", Types: []string{"float"}})

	plain := &model.Function{Base: model.Base{Name: "Plain"}}
	out, diags := Resolve(plain, pol)
	assert.Equal(t, []model.Decl{plain}, out)
	assert.Zero(t, diags.Len())

	unmatched := &model.Function{Base: model.Base{Name: "Other"}, TemplateParams: []string{"T"}}
	out, diags = Resolve(unmatched, pol)
	assert.Empty(t, out)
	require.Len(t, diags.Infos, 1)
	assert.Equal(t, "template_unmatched", diags.Infos[0].Code)

	multi := &model.Function{Base: model.Base{Name: "Sum"}, TemplateParams: []string{"T", "U"}}
	out, diags = Resolve(multi, pol)
	assert.Empty(t, out)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "multi_param_template", diags.Warnings[0].Code)

	class := &model.Struct{Base: model.Base{Name: "Sum"}, TemplateParams: []string{"T"}}
	out, _ = Resolve(class, pol)
	assert.Empty(t, out, "function specs do not apply to classes")
}

func TestResolve_ParamMismatch(t *testing.T) {
	pol := compile(t, policy.TemplateDef{Match: "^Sum$", Params: []string{"U"}, Types: []string{"float"}})

	out, diags := Resolve(sumTemplate(), pol)
	assert.Empty(t, out)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "template_param_mismatch", diags.Warnings[0].Code)
}

func TestName(t *testing.T) {
	tests := []struct {
		scheme   policy.NamingScheme
		typ      string
		expected string
	}{
		{policy.NamingSnakeSuffix, "float", "Sum_float"},
		{policy.NamingSnakePrefix, "float", "float_Sum"},
		{policy.NamingCamelSuffix, "unsigned int", "SumUnsignedInt"},
		{policy.NamingCamelPrefix, "double", "DoubleSum"},
		{policy.NamingCamelSuffix, "ImVec2*", "SumImVec2Ptr"},
		{policy.NamingNone, "float", "Sum"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme)+"/"+tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name("Sum", tt.typ, tt.scheme))
		})
	}
}
