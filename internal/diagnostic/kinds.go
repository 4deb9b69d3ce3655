package diagnostic

import (
	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/common"
)

// Kind classifies a diagnostic or fatal error.
type Kind int

const (
	// KindNote is informational. Only strict mode makes it fatal.
	KindNote Kind = iota
	// KindSyntaxCollaborator: the external tree producer failed. Fatal per file.
	KindSyntaxCollaborator
	// KindModelBuild: a declaration could not be modeled and was dropped.
	KindModelBuild
	// KindPolicyValidation: the policy is invalid. Fatal before any build.
	KindPolicyValidation
	// KindAdaptation: a parameter shape cannot be expressed; the function was skipped.
	KindAdaptation
	// KindOutputSplice: the destination marker pair is missing. Fatal per file.
	KindOutputSplice
)

// Sentinel errors, one per Kind. Fatal errors are marked with them so callers
// can use errors.Is regardless of wrapping.
var (
	ErrNote               = errors.New("note")
	ErrSyntaxCollaborator = errors.New("syntax collaborator error")
	ErrModelBuild         = errors.New("model build error")
	ErrPolicyValidation   = errors.New("policy validation error")
	ErrAdaptation         = errors.New("adaptation error")
	ErrOutputSplice       = errors.New("output splice error")
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindSyntaxCollaborator:
		return "syntax_collaborator"
	case KindModelBuild:
		return "model_build"
	case KindPolicyValidation:
		return "policy_validation"
	case KindAdaptation:
		return "adaptation"
	case KindOutputSplice:
		return "output_splice"
	default:
		return common.UnknownStr
	}
}

// Sentinel returns the mark error for this kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindSyntaxCollaborator:
		return ErrSyntaxCollaborator
	case KindModelBuild:
		return ErrModelBuild
	case KindPolicyValidation:
		return ErrPolicyValidation
	case KindAdaptation:
		return ErrAdaptation
	case KindOutputSplice:
		return ErrOutputSplice
	default:
		return ErrNote
	}
}

// Mark tags err with the sentinel of kind k.
func Mark(err error, k Kind) error {
	if err == nil {
		return nil
	}

	return errors.Mark(err, k.Sentinel())
}

// KindOf returns the kind of a marked error, or KindNote if unmarked.
func KindOf(err error) Kind {
	for _, k := range []Kind{
		KindSyntaxCollaborator, KindModelBuild, KindPolicyValidation, KindAdaptation, KindOutputSplice,
	} {
		if errors.Is(err, k.Sentinel()) {
			return k
		}
	}

	return KindNote
}
