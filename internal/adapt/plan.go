package adapt

import (
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/model"
)

// Plan holds one decision per parameter, in order, and one for the return slot.
type Plan struct {
	Function *model.Function
	Params   []Decision
	Return   Decision
}

// Visible returns the decisions of parameters that remain Python arguments.
func (p Plan) Visible() []Decision {
	out := make([]Decision, 0, len(p.Params))

	for _, d := range p.Params {
		if d.IsVisible() {
			out = append(out, d)
		}
	}

	return out
}

// Outputs returns the promoted out-parameters in parameter order.
func (p Plan) Outputs() []Decision {
	var out []Decision

	for _, d := range p.Params {
		if d.Kind == PromotedOut {
			out = append(out, d)
		}
	}

	return out
}

// ReturnsValue reports whether the original call result is returned.
func (p Plan) ReturnsValue() bool {
	return !p.Function.Constructor && !p.Return.Type.IsVoid()
}

// ReturnsTuple reports whether the Python result is a tuple: the original
// value followed by promoted outputs, or several outputs.
func (p Plan) ReturnsTuple() bool {
	n := len(p.Outputs())
	if p.ReturnsValue() {
		n++
	}

	return n > 1
}

// NeedsWrapper reports whether the call needs a glue lambda instead of a
// direct function pointer.
func (p Plan) NeedsWrapper() bool {
	for _, d := range p.Params {
		if d.Kind != Passthrough {
			return true
		}
	}

	return false
}

// Uses reports whether any parameter is adapted with kind k.
func (p Plan) Uses(k Kind) bool {
	for _, d := range p.Params {
		if d.Kind == k {
			return true
		}
	}

	return false
}

// ElemType is the type a box, buffer, array or output holds.
func ElemType(d Decision) ctype.Expr {
	v := d.Type.Value()
	v.Const = false

	return v
}
