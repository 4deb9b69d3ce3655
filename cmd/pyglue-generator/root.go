package main

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pyglue-generator/internal/logger"
	"pyglue-generator/internal/pipeline"
	"pyglue-generator/internal/policy"
)

// Environment overrides, also read from a .env file in the working directory.
const (
	envPolicy = "PYGLUE_POLICY"
	envStrict = "PYGLUE_STRICT"
	envQuiet  = "PYGLUE_QUIET"
	envParser = "PYGLUE_PARSER"
)

type globalOptions struct {
	policyPath string
	strict     bool
	quiet      bool
	parser     string
	verbose    bool
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "pyglue-generator",
		Short:         "Generate pybind11 glue and Python stubs from C++ headers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.policyPath, "policy", "p", "", "Policy file (YAML or TOML); $"+envPolicy+" when empty")
	flags.BoolVar(&opts.strict, "strict", false, "Treat every diagnostic as fatal for its file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print diagnostics")
	flags.StringVar(&opts.parser, "parser", "", "External syntax tree command, overrides the policy")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.json, "json", false, "Log as JSON")

	root.AddCommand(
		newGenCmd(opts),
		newCheckCmd(opts),
		newDumpCmd(opts),
		newWatchCmd(opts),
		newPolicyCmd(opts),
	)

	return root
}

// setup loads the environment and the policy and builds the run context.
func (o *globalOptions) setup() (*pipeline.GenerationContext, error) {
	_ = godotenv.Load()

	log, err := logger.New(logger.Options{JSON: o.json, Verbose: o.verbose})
	if err != nil {
		return nil, errors.Wrap(err, "creating logger")
	}

	pol, err := o.loadPolicy()
	if err != nil {
		return nil, err
	}

	return pipeline.NewContext(pol, log)
}

func (o *globalOptions) resolvedPolicyPath() string {
	if o.policyPath != "" {
		return o.policyPath
	}

	return os.Getenv(envPolicy)
}

// loadPolicy reads the policy file, or the defaults when none is given, and
// applies the flag and environment toggles on top.
func (o *globalOptions) loadPolicy() (*policy.Policy, error) {
	pol := policy.Default()

	if path := o.resolvedPolicyPath(); path != "" {
		pf, err := policy.LoadFile(path)
		if err != nil {
			return nil, err
		}

		if pol, err = policy.Compile(pf); err != nil {
			return nil, errors.Wrapf(err, "policy file %s", path)
		}
	}

	strict := pol.Strict || o.strict || envBool(envStrict)
	quiet := pol.Quiet || o.quiet || envBool(envQuiet)

	parser := pol.ParserCommand
	if env := os.Getenv(envParser); env != "" {
		parser = env
	}

	if o.parser != "" {
		parser = o.parser
	}

	return pol.WithToggles(strict, quiet, parser), nil
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}

func syncLogger(log *zap.SugaredLogger) {
	_ = log.Sync()
}
