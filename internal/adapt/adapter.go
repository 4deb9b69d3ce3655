package adapt

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
)

// Adapt classifies every parameter and the return slot of fn. An error marked
// diagnostic.ErrAdaptation means fn cannot be expressed and must be skipped.
func Adapt(fn *model.Function, pol *policy.Policy) (Plan, error) {
	a := &adapter{fn: fn, pol: pol, types: make([]ctype.Expr, len(fn.Params))}

	for i, p := range fn.Params {
		a.types[i] = ctype.Parse(p.TypeText)
	}

	plan := Plan{
		Function: fn,
		Params:   make([]Decision, len(fn.Params)),
		Return:   passthrough(nil, ctype.Parse(fn.ReturnType)),
	}

	for i := 0; i < len(fn.Params); i++ {
		d, err := a.decide(i)
		if err != nil {
			return Plan{}, err
		}

		plan.Params[i] = d

		if d.Kind == BufferView {
			plan.Params[d.Count] = Decision{
				Kind:   Dropped,
				Param:  fn.Params[d.Count],
				Type:   a.types[d.Count],
				Count:  i,
				Format: -1,
				Rule:   d.Rule,
				Reason: "count derived from " + fn.Params[i].Name,
			}
			i = d.Count
		}
	}

	return plan, nil
}

type adapter struct {
	fn    *model.Function
	pol   *policy.Policy
	types []ctype.Expr
}

func (a *adapter) subject(i int) policy.Subject {
	return policy.Subject{Function: a.fn.Name, Param: a.fn.Params[i].Name, Type: a.fn.Params[i].TypeText}
}

func (a *adapter) decide(i int) (Decision, error) {
	p, t := a.fn.Params[i], a.types[i]
	subj := a.subject(i)

	d := passthrough(p, t)

	if strings.Contains(p.TypeText, "(*") || strings.Contains(p.TypeText, "(&") {
		return Decision{}, diagnostic.Mark(
			errors.Newf("parameter %q: function pointers cannot be bound", p.Name), diagnostic.KindAdaptation)
	}

	// variadic tail
	if p.Variadic {
		if r, ok := a.pol.Adapt.Variadic.Match(subj); ok {
			d.Kind, d.Rule, d.Reason = Dropped, r.Index, "variadic tail"
			if i > 0 && a.types[i-1].IsCString() {
				d.Format = i - 1
				d.Reason = "variadic tail, format forwarded"
			}
		}

		return d, nil
	}

	// fixed size array
	if t.IsArray() && t.Kind().IsScalar() {
		if r, ok := a.pol.Adapt.FixedArray.Match(subj); ok {
			n, resolved := t.ArraySize(a.pol.Number)
			if !resolved {
				return Decision{}, diagnostic.Mark(
					errors.Newf("parameter %q: cannot resolve array size %q", p.Name, strings.Join(t.Dims, "][")),
					diagnostic.KindAdaptation)
			}

			d.Kind, d.Size, d.Rule = FixedArray, n, r.Index
			d.Reason = fmt.Sprintf("fixed array of %d", n)

			return d, nil
		}
	}

	countRule, count := a.bufferCount(i)

	// boxed scalar, unless it heads a counted buffer
	if a.singleScalar(t) && count < 0 {
		if r, ok := a.pol.Adapt.Boxed.Match(subj); ok {
			d.Kind, d.Rule, d.Nullable = Boxed, r.Index, t.Pointers == 1
			d.Reason = "mutable scalar"

			return d, nil
		}
	}

	// counted buffer
	if count >= 0 {
		d.Kind, d.Count, d.Rule = BufferView, count, countRule.Index
		d.Reason = "buffer counted by " + a.fn.Params[count].Name

		return d, nil
	}

	// sizeof default
	if isSizeof(p.Default) {
		if r, ok := a.pol.Adapt.SizeofDefault.Match(subj); ok {
			d.Kind, d.Rule, d.Reason = SentinelDefault, r.Index, "sizeof default resolved in glue"
			return d, nil
		}
	}

	// promoted output
	if t.IsIndirect() && !t.Const && !t.IsArray() && !t.IsCString() {
		if r, ok := a.pol.Adapt.Promote.Match(subj); ok {
			d.Kind, d.Rule, d.Reason = PromotedOut, r.Index, "promoted to return value"
			return d, nil
		}
	}

	return d, nil
}

// singleScalar reports a mutable pointer or reference to one number or bool.
func (a *adapter) singleScalar(t ctype.Expr) bool {
	if t.Const || t.IsArray() || !t.Kind().IsScalar() {
		return false
	}

	return (t.Pointers == 1 && !t.Reference && !t.RValue) || (t.Pointers == 0 && t.Reference)
}

// bufferCount finds the count parameter that makes parameter i a buffer.
// It returns -1 when i is not a buffer pointer followed by a matching count.
func (a *adapter) bufferCount(i int) (policy.Rule, int) {
	t := a.types[i]
	if t.Pointers != 1 || t.Reference || t.IsArray() || !t.Kind().IsNumber() {
		return policy.Rule{}, -1
	}

	next := i + 1
	if next >= len(a.fn.Params) {
		return policy.Rule{}, -1
	}

	nt := a.types[next]
	if nt.IsIndirect() || nt.IsArray() || !nt.Kind().IsInteger() {
		return policy.Rule{}, -1
	}

	subj := a.subject(i)

	for _, r := range a.pol.Adapt.Buffer {
		if r.Matches(subj) && r.MatchesCount(a.fn.Params[next].Name) {
			return r, next
		}
	}

	return policy.Rule{}, -1
}

func isSizeof(expr string) bool {
	return strings.HasPrefix(strings.TrimSpace(expr), "sizeof")
}
