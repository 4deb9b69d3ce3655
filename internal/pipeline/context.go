package pipeline

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pyglue-generator/internal/gen"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
	"pyglue-generator/internal/srctree"
)

// GenerationContext is everything one run needs. It is passed explicitly;
// nothing in the pipeline is global.
type GenerationContext struct {
	// RunID tags every log line of the run.
	RunID    string
	Policy   *policy.Policy
	Provider srctree.Provider
	Log      *zap.SugaredLogger
	// Rules are the rename rules of the last run, merged in input order.
	Rules *replace.Cache
	// Renders survive across runs of a watch loop.
	Renders *gen.RenderCache
	// Encoding is passed to the syntax tree provider.
	Encoding string
}

// NewContext builds a context for pol. The provider follows the policy's
// parser command: an external process when set, tree-sitter otherwise.
func NewContext(pol *policy.Policy, log *zap.SugaredLogger) (*GenerationContext, error) {
	provider, err := ProviderFor(pol)
	if err != nil {
		return nil, err
	}

	renders, err := gen.NewRenderCache(gen.DefaultCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "render cache")
	}

	runID := uuid.NewString()

	return &GenerationContext{
		RunID:    runID,
		Policy:   pol,
		Provider: provider,
		Log:      log.With("run", runID),
		Rules:    replace.New(),
		Renders:  renders,
		Encoding: "utf-8",
	}, nil
}

// ProviderFor returns the syntax tree provider configured by pol.
func ProviderFor(pol *policy.Policy) (srctree.Provider, error) {
	if pol.ParserCommand == "" {
		return srctree.NewSitterProvider(), nil
	}

	p, err := srctree.NewExecProvider(pol.ParserCommand, pol.ParserTimeout)
	if err != nil {
		return nil, err
	}

	return p, nil
}
