package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
)

func param(i int, name, typ string) *model.Parameter {
	return &model.Parameter{Base: model.Base{Name: name, TypeText: typ}, Index: i}
}

func withDefault(p *model.Parameter, def string) *model.Parameter {
	p.Default = def
	return p
}

func function(scope []string, name, ret string, params ...*model.Parameter) *model.Function {
	return &model.Function{
		Base:       model.Base{Name: name, Scope: scope, TypeText: ret},
		ReturnType: ret,
		Params:     params,
	}
}

func policyFrom(t *testing.T, doc string) *policy.Policy {
	t.Helper()

	pf, err := policy.Parse([]byte(doc))
	require.NoError(t, err)

	pol, err := policy.Compile(pf)
	require.NoError(t, err)

	return pol
}

func render(t *testing.T, pol *policy.Policy, decls ...model.Decl) (Output, diagnostic.Diagnostics) {
	t.Helper()

	if pol == nil {
		pol = policy.Default()
	}

	return Render(&model.Model{File: "implot.h", Decls: decls}, pol, replace.New())
}

func codes(list []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Code)
	}

	return out
}

func TestRender_DirectFunction(t *testing.T) {
	f := function([]string{"ImPlot"}, "SetNextAxisLimits", "void", param(0, "axis", "ImAxis"), param(1, "v_min", "double"))
	f.Comment = "Sets limits."

	out, diags := render(t, nil, &model.Namespace{Base: model.Base{Name: "ImPlot"}, Children: []model.Decl{f}})
	assert.Zero(t, diags.Len())

	assert.Equal(t,
		`m.def("set_next_axis_limits", &ImPlot::SetNextAxisLimits, "Sets limits.", py::arg("axis"), py::arg("v_min"));`+"\n",
		out.Glue)
	assert.Equal(t,
		"def set_next_axis_limits(axis: Any, v_min: float) -> None:\n"+
			"    \"\"\"Sets limits.\"\"\"\n"+
			"    ...\n",
		out.Stub)
	assert.Equal(t, []string{"from typing import Any"}, out.Imports)
	assert.Empty(t, out.Boxes)
}

func TestRender_BoxedScalar(t *testing.T) {
	f := function([]string{"ImGui"}, "DragFloat", "bool",
		param(0, "label", "const char *"),
		param(1, "v", "float *"),
		withDefault(param(2, "speed", "float"), "1.0f"))

	out, diags := render(t, nil, f)
	assert.Zero(t, diags.Len())

	assert.Equal(t, `m.def("drag_float", [](const char *label, FloatBox *v, float speed) {
    auto result = ImGui::DragFloat(label, v ? &v->value : nullptr, speed);
    return result;
}, py::arg("label"), py::arg("v").none(true), py::arg("speed") = 1.0f);
`, out.Glue)
	assert.Equal(t, "def drag_float(label: str, v: Optional[FloatBox], speed: float = 1.0) -> bool: ...\n", out.Stub)
	assert.Equal(t, []Box{{Name: "FloatBox", CType: "float"}}, out.Boxes)
	assert.Equal(t, []string{"from typing import Optional"}, out.Imports)

	glue := out.GlueText("m")
	assert.Contains(t, glue, "struct FloatBox { float value{}; };\n")
	assert.Contains(t, glue, `py::class_<FloatBox>(m, "FloatBox")`)
	assert.Contains(t, glue, `.def_readwrite("value", &FloatBox::value);`)

	stub := out.StubText()
	assert.Contains(t, stub, "class FloatBox:\n    value: float\n")
	assert.Equal(t, "from typing import Optional\n", stub[:len("from typing import Optional\n")])
}

func TestRender_BufferOverloads(t *testing.T) {
	floats := function(nil, "PlotLine", "void", param(0, "values", "const float *"), param(1, "count", "int"))
	doubles := function(nil, "PlotLine", "void", param(0, "values", "const double *"), param(1, "count", "int"))
	single := function(nil, "PlotLine", "void", param(0, "x", "int"))

	out, diags := render(t, nil, floats, doubles, single)
	require.Empty(t, diags.Errors)
	require.Empty(t, diags.Warnings)
	assert.Equal(t, []string{"overload_indistinguishable"}, codes(diags.Infos))
	assert.Equal(t, "implot.h", diags.Infos[0].File)

	assert.Contains(t, out.Glue, `m.def("plot_line", [](py::buffer values) {
    py::buffer_info values_info = values.request();
    if (values_info.ndim != 1) throw py::type_error("values: expected a one-dimensional buffer");
    if (values_info.format != py::format_descriptor<float>::format()) throw py::type_error("values: expected float items");
    if (values_info.strides[0] != static_cast<py::ssize_t>(sizeof(float))) throw py::type_error("values: expected contiguous items");
    PlotLine(static_cast<const float *>(values_info.ptr), static_cast<int>(values_info.shape[0]));
}, py::arg("values"));`)
	assert.Contains(t, out.Glue, "py::format_descriptor<double>::format()")
	assert.Contains(t, out.Glue, `m.def("plot_line", py::overload_cast<int>(&PlotLine), py::arg("x"));`)

	assert.Equal(t,
		"@overload\ndef plot_line(values: np.ndarray) -> None: ...\n"+
			"@overload\ndef plot_line(values: np.ndarray) -> None: ...\n"+
			"@overload\ndef plot_line(x: int) -> None: ...\n",
		out.Stub)
	assert.Equal(t, []string{"import numpy as np", "from typing import overload"}, out.Imports)
}

func TestRender_Class(t *testing.T) {
	scope := []string{"ImPlotPoint"}

	ctor := function(scope, "ImPlotPoint", "")
	ctor.Constructor, ctor.Owner = true, "ImPlotPoint"

	ctorXY := function(scope, "ImPlotPoint", "", param(0, "x", "double"), param(1, "y", "double"))
	ctorXY.Constructor, ctorXY.Owner = true, "ImPlotPoint"

	length := function(scope, "Length", "double")
	length.Const, length.Owner = true, "ImPlotPoint"

	create := function(scope, "Create", "ImPlotPoint *")
	create.Static, create.Owner = true, "ImPlotPoint"

	st := &model.Struct{
		Base: model.Base{Name: "ImPlotPoint"},
		Children: []model.Decl{
			ctor, ctorXY,
			&model.Variable{Base: model.Base{Name: "x", Scope: scope, TypeText: "double"}},
			&model.Variable{Base: model.Base{Name: "y", Scope: scope, TypeText: "double", EOLComment: "vertical"}},
			length, create,
		},
	}

	out, diags := render(t, nil, st)
	require.Empty(t, diags.Errors)
	require.Empty(t, diags.Warnings)

	assert.Equal(t, `py::class_<ImPlotPoint> cls_ImPlotPoint(m, "ImPlotPoint");
cls_ImPlotPoint.def(py::init<>());
cls_ImPlotPoint.def(py::init<double, double>(), py::arg("x"), py::arg("y"));
cls_ImPlotPoint.def_readwrite("x", &ImPlotPoint::x);
cls_ImPlotPoint.def_readwrite("y", &ImPlotPoint::y);
cls_ImPlotPoint.def("length", &ImPlotPoint::Length);
cls_ImPlotPoint.def_static("create", &ImPlotPoint::Create, py::return_value_policy::reference);
`, out.Glue)

	assert.Equal(t, `class ImPlotPoint:
    @overload
    def __init__(self) -> None: ...
    @overload
    def __init__(self, x: float, y: float) -> None: ...
    x: float
    y: float  # vertical
    def length(self) -> float: ...
    @staticmethod
    def create() -> Optional[ImPlotPoint]: ...
`, out.Stub)
	assert.Equal(t, []string{"from typing import Optional, overload"}, out.Imports)
}

func TestRender_ClassWithoutConstructor(t *testing.T) {
	base := &model.Struct{Base: model.Base{Name: "Shape"}}
	derived := &model.Struct{Base: model.Base{Name: "Circle", Comment: "A circle."}, Bases: []string{"Shape", "Unknown"}}

	// bases are registered first
	out, _ := render(t, nil, derived, base)

	assert.Equal(t, `py::class_<Shape> cls_Shape(m, "Shape");
cls_Shape.def(py::init<>());
py::class_<Circle, Shape> cls_Circle(m, "Circle", "A circle.");
cls_Circle.def(py::init<>());
`, out.Glue)
	assert.Equal(t, `class Shape:
    def __init__(self) -> None: ...
class Circle(Shape):
    """A circle."""
    def __init__(self) -> None: ...
`, out.Stub)
}

func TestRender_Enum(t *testing.T) {
	e := &model.Enum{
		Base: model.Base{Name: "ImAxis_"},
		Children: []model.Decl{
			&model.EnumConstant{Base: model.Base{Name: "X1"}, CName: "ImAxis_X1", Value: "0"},
			&model.EnumConstant{Base: model.Base{Name: "X2"}, CName: "ImAxis_X2"},
			&model.Region{Base: model.Base{Name: "Y axes"}},
			&model.EnumConstant{Base: model.Base{Name: "Y1"}, CName: "ImAxis_Y1", Value: "1 << 2"},
			&model.EnumConstant{Base: model.Base{Name: "Y2"}, CName: "ImAxis_Y2"},
			&model.EnumConstant{Base: model.Base{Name: "Both"}, CName: "ImAxis_Both", Value: "ImAxis_X1 | ImAxis_Y1"},
			&model.EnumConstant{Base: model.Base{Name: "None"}, CName: "ImAxis_None"},
		},
	}

	out, diags := render(t, nil, e)
	assert.Zero(t, diags.Len())

	assert.Equal(t, `py::enum_<ImAxis_> enum_ImAxis(m, "ImAxis", py::arithmetic());
enum_ImAxis.value("X1", ImAxis_::ImAxis_X1);
enum_ImAxis.value("X2", ImAxis_::ImAxis_X2);
// Y axes
enum_ImAxis.value("Y1", ImAxis_::ImAxis_Y1);
enum_ImAxis.value("Y2", ImAxis_::ImAxis_Y2);
enum_ImAxis.value("Both", ImAxis_::ImAxis_Both);
enum_ImAxis.value("None_", ImAxis_::ImAxis_None);
`, out.Glue)
	assert.Equal(t, `class ImAxis(enum.IntEnum):
    X1 = 0
    X2 = 1
    # Y axes
    Y1 = 4
    Y2 = 5
    Both = ...
    None_ = ...
`, out.Stub)
	assert.Equal(t, []string{"import enum"}, out.Imports)
}

func TestRender_ScopedEnum(t *testing.T) {
	e := &model.Enum{
		Base:   model.Base{Name: "Flags", Scope: []string{"ImPlot"}},
		Scoped: true,
	}

	out, _ := render(t, nil, &model.Namespace{Base: model.Base{Name: "ImPlot"}, Children: []model.Decl{e}})
	assert.Equal(t, "py::enum_<ImPlot::Flags> enum_Flags(m, \"Flags\");\n", out.Glue)
	assert.Equal(t, "class Flags(enum.Enum):\n    ...\n", out.Stub)
}

func TestRender_Adaptations(t *testing.T) {
	pol := policyFrom(t, `
adapt:
  boxed: [{param: "^v$"}]
  promote: [{param: "^out_"}]
`)

	tests := []struct {
		name string
		fn   *model.Function
		glue string
		stub string
	}{
		{
			name: "fixed array",
			fn:   function(nil, "SetColor", "void", param(0, "col", "float[4]")),
			glue: `m.def("set_color", [](py::list col) {
    if (col.size() != 4) throw py::type_error("col: expected 4 values");
    float col_buf[4];
    for (size_t i = 0; i < 4; i++) col_buf[i] = col[i].cast<float>();
    SetColor(col_buf);
    for (size_t i = 0; i < 4; i++) col[i] = col_buf[i];
}, py::arg("col"));
`,
			stub: "def set_color(col: List[float]) -> None: ...\n",
		},
		{
			name: "variadic with format",
			fn: function(nil, "Text", "void", param(0, "fmt", "const char *"),
				&model.Parameter{Base: model.Base{TypeText: "..."}, Index: 1, Variadic: true}),
			glue: `m.def("text", [](const char *fmt) {
    Text("%s", fmt);
}, py::arg("fmt"));
`,
			stub: "def text(fmt: str) -> None: ...\n",
		},
		{
			name: "promoted outputs",
			fn:   function(nil, "GetSize", "void", param(0, "out_w", "int *"), param(1, "out_h", "int &")),
			glue: `m.def("get_size", []() {
    int out_w{};
    int out_h{};
    GetSize(&out_w, out_h);
    return py::make_tuple(out_w, out_h);
});
`,
			stub: "def get_size() -> Tuple[int, int]: ...\n",
		},
		{
			name: "value and output",
			fn:   function(nil, "Pick", "bool", param(0, "out_index", "int *")),
			glue: `m.def("pick", []() {
    int out_index{};
    auto result = Pick(&out_index);
    return py::make_tuple(result, out_index);
});
`,
			stub: "def pick() -> Tuple[bool, int]: ...\n",
		},
		{
			name: "sizeof default",
			fn: function(nil, "Upload", "void", param(0, "data", "const void *"),
				withDefault(param(1, "size", "size_t"), "sizeof(float)")),
			glue: `m.def("upload", [](const void *data, py::ssize_t size) {
    size_t size_value = size == -1 ? sizeof(float) : static_cast<size_t>(size);
    Upload(data, size_value);
}, py::arg("data"), py::arg("size") = -1);
`,
			stub: "def upload(data: Any, size: int = -1) -> None: ...\n",
		},
		{
			name: "boxed reference",
			fn:   function(nil, "Toggle", "void", param(0, "v", "bool &")),
			glue: `m.def("toggle", [](BoolBox &v) {
    Toggle(v.value);
}, py::arg("v"));
`,
			stub: "def toggle(v: BoolBox) -> None: ...\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diags := render(t, pol, tt.fn)
			assert.Zero(t, diags.Len(), diags.All())
			assert.Equal(t, tt.glue, out.Glue)
			assert.Equal(t, tt.stub, out.Stub)
		})
	}
}

func TestRender_SkippedFunctions(t *testing.T) {
	pol := policyFrom(t, "adapt:\n  variadic: []\n")

	variadic := function(nil, "Text", "void", param(0, "fmt", "const char *"),
		&model.Parameter{Base: model.Base{TypeText: "..."}, Index: 1, Variadic: true})
	unsized := function(nil, "SetColor", "void", param(0, "col", "float[N]"))
	callback := function(nil, "SetCallback", "void", param(0, "cb", "void (*)(int)"))
	kept := function(nil, "Kept", "void")

	out, diags := render(t, pol, variadic, unsized, callback, kept)
	assert.Equal(t, []string{"variadic_unbound", "adaptation_failed", "adaptation_failed"}, codes(diags.Warnings))

	for _, w := range diags.Warnings {
		assert.Equal(t, diagnostic.KindAdaptation, w.Kind)
	}

	assert.Equal(t, "m.def(\"kept\", &Kept);\n", out.Glue)
	assert.Equal(t, "def kept() -> None: ...\n", out.Stub)
}

func TestRender_Specialized(t *testing.T) {
	pol := policyFrom(t, `
templates:
  - match: "^Sum$"
    types: [float, double]
    naming: snake-suffix
  - match: "^Vec$"
    kind: class
    types: [int]
    naming: camel-suffix
`)

	sum := function([]string{"ImPlot"}, "Sum", "T", param(0, "values", "const T *"), param(1, "count", "int"))
	sum.TemplateParams = []string{"T"}

	get := function([]string{"Vec"}, "Get", "T", param(0, "i", "int"))
	get.Owner = "Vec"

	vec := &model.Struct{
		Base:           model.Base{Name: "Vec"},
		TemplateParams: []string{"T"},
		Children:       []model.Decl{get},
	}

	out, diags := render(t, pol, &model.Namespace{Base: model.Base{Name: "ImPlot"}, Children: []model.Decl{sum}}, vec)
	require.Empty(t, diags.Errors)
	require.Empty(t, diags.Warnings)

	assert.Contains(t, out.Glue, `m.def("sum_float", [](py::buffer values) {`)
	assert.Contains(t, out.Glue, `    auto result = ImPlot::Sum<float>(static_cast<const float *>(values_info.ptr), static_cast<int>(values_info.shape[0]));`)
	assert.Contains(t, out.Glue, `m.def("sum_double", [](py::buffer values) {`)
	assert.Contains(t, out.Glue, `py::class_<Vec<int>> cls_VecInt(m, "VecInt");`)
	assert.Contains(t, out.Glue, `cls_VecInt.def("get", &Vec<int>::Get, py::arg("i"));`)

	assert.Contains(t, out.Stub, "def sum_float(values: np.ndarray) -> float: ...\n")
	assert.Contains(t, out.Stub, "def sum_double(values: np.ndarray) -> float: ...\n")
	assert.Contains(t, out.Stub, "class VecInt:\n    def __init__(self) -> None: ...\n    def get(self, i: int) -> int: ...\n")
}

func TestRender_DefaultsAndRenames(t *testing.T) {
	cache := replace.New()
	cache.AddWord("ImPlotFlags_None", "PlotFlags.None_")

	f := function(nil, "BeginPlot", "bool",
		param(0, "title", "const char *"),
		withDefault(param(1, "flags", "ImPlotFlags"), "ImPlotFlags_None"),
		withDefault(param(2, "show", "bool"), "true"),
		withDefault(param(3, "parent", "ImPlotPoint *"), "NULL"),
		withDefault(param(4, "size", "ImVec2"), "ImVec2(-1, 0)"),
		withDefault(param(5, "id", "const char *"), `"plot"`))

	out, _ := Render(&model.Model{File: "implot.h", Decls: []model.Decl{f}}, policy.Default(), cache)

	assert.Contains(t, out.Glue, `py::arg("flags") = ImPlotFlags_None, py::arg("show") = true, py::arg("parent") = nullptr, `+
		`py::arg("size") = ImVec2(-1, 0), py::arg("id") = "plot");`)
	assert.Equal(t, "def begin_plot(title: str, flags: Any = PlotFlags.None_, show: bool = True, parent: Any = None, "+
		"size: Any = ..., id: str = \"plot\") -> bool: ...\n", out.Stub)
}

func TestRender_ModuleVariableAndRegion(t *testing.T) {
	pol := policyFrom(t, "output:\n  module_var: mod\n")

	out, _ := render(t, pol,
		&model.Region{Base: model.Base{Name: "Globals\nsecond line"}},
		&model.Variable{Base: model.Base{Name: "DefaultSize", Scope: []string{"ImPlot"}, TypeText: "const int", Comment: "Pixels."}, Const: true},
	)

	assert.Equal(t, "// Globals\n// second line\nmod.attr(\"default_size\") = ImPlot::DefaultSize;\n", out.Glue)
	assert.Equal(t, "# Globals\n# second line\ndefault_size: int\n\"\"\"Pixels.\"\"\"\n", out.Stub)
}

func TestRender_Pure(t *testing.T) {
	f := function([]string{"ImGui"}, "DragFloat", "bool", param(0, "v", "float *"))
	m := &model.Model{File: "imgui.h", Decls: []model.Decl{f}}

	first, _ := Render(m, policy.Default(), replace.New())
	second, _ := Render(m, policy.Default(), replace.New())

	assert.Equal(t, first, second)
	assert.Equal(t, "DragFloat", f.Name)
	assert.Equal(t, "float *", f.Params[0].TypeText)
}

func TestRender_IntegerDefaults(t *testing.T) {
	f := function(nil, "Open", "void",
		withDefault(param(0, "mode", "int"), "0755"),
		withDefault(param(1, "mask", "unsigned int"), "0b1'000u"),
		withDefault(param(2, "count", "long"), "1'000'000L"),
		withDefault(param(3, "color", "unsigned int"), "0xFF00FF00"),
		withDefault(param(4, "offset", "int"), "-012"),
		withDefault(param(5, "zero", "int"), "0"),
		withDefault(param(6, "bad", "int"), "098"))

	out, _ := Render(&model.Model{File: "io.h", Decls: []model.Decl{f}}, policy.Default(), replace.New())

	assert.Contains(t, out.Glue, `py::arg("mode") = 0755`)
	assert.Equal(t, "def open(mode: int = 0o755, mask: int = 0b1000, count: int = 1000000, color: int = 0xFF00FF00, "+
		"offset: int = -0o12, zero: int = 0, bad: int = ...) -> None: ...\n", out.Stub)
}
