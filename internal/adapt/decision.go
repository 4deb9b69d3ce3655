package adapt

import (
	"pyglue-generator/internal/common"
	"pyglue-generator/internal/ctype"
	"pyglue-generator/internal/model"
)

// Kind is an adaptation strategy.
type Kind int

const (
	Passthrough Kind = iota
	FixedArray
	Boxed
	BufferView
	Dropped
	SentinelDefault
	PromotedOut
)

// String returns the strategy name.
func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case FixedArray:
		return "fixed_array"
	case Boxed:
		return "boxed"
	case BufferView:
		return "buffer_view"
	case Dropped:
		return "dropped"
	case SentinelDefault:
		return "sentinel_default"
	case PromotedOut:
		return "promoted_out"
	default:
		return common.UnknownStr
	}
}

// Sentinel is the visible default of a SentinelDefault parameter.
const Sentinel = "-1"

// Decision is the adaptation of one parameter or of the return slot.
type Decision struct {
	Kind Kind
	// Param is nil for the return slot.
	Param *model.Parameter
	Type  ctype.Expr
	// Size is the element count of a FixedArray.
	Size int
	// Nullable marks a Boxed pointer that accepts None.
	Nullable bool
	// Count is the index of the count parameter of a BufferView, and for a
	// Dropped count the index of the buffer it is derived from. -1 otherwise.
	Count int
	// Format is the index of the format string forwarded for a dropped
	// variadic tail, -1 if there is none.
	Format int
	// Rule is the index of the policy row that selected the strategy, -1 for
	// Passthrough.
	Rule int
	// Reason explains the choice for dumps and diagnostics.
	Reason string
}

// IsVisible reports whether the parameter stays in the Python signature.
func (d Decision) IsVisible() bool {
	return d.Kind != Dropped && d.Kind != PromotedOut
}

// IsDerivedCount reports a count parameter computed from its buffer.
func (d Decision) IsDerivedCount() bool {
	return d.Kind == Dropped && d.Count >= 0
}

func passthrough(p *model.Parameter, t ctype.Expr) Decision {
	return Decision{Kind: Passthrough, Param: p, Type: t, Count: -1, Format: -1, Rule: -1, Reason: "no adaptation"}
}
