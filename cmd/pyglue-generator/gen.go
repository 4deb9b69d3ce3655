package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"pyglue-generator/internal/discover"
	"pyglue-generator/internal/pipeline"
)

type genOptions struct {
	glue           string
	stub           string
	preserveIndent bool
	jobs           int
	dryRun         bool
}

func (o *genOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.glue, "glue", "", "C++ file holding the glue marker region")
	flags.StringVar(&o.stub, "stub", "", "Python stub file holding the stub marker region")
	flags.BoolVar(&o.preserveIndent, "preserve-indent", true, "Indent generated lines like the start marker")
	flags.IntVarP(&o.jobs, "jobs", "j", 0, "Files processed concurrently (0 = number of CPUs)")
}

func (o *genOptions) pipeline() pipeline.Options {
	return pipeline.Options{
		GlueFile:       o.glue,
		StubFile:       o.stub,
		PreserveIndent: o.preserveIndent,
		Jobs:           o.jobs,
		DryRun:         o.dryRun,
	}
}

func newGenCmd(global *globalOptions) *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:   "gen <header|dir>...",
		Short: "Generate glue and stubs and splice them into the destinations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := global.setup()
			if err != nil {
				return err
			}
			defer syncLogger(gc.Log)

			if !opts.dryRun && opts.glue == "" && opts.stub == "" {
				return errors.New("nothing to write: pass --glue, --stub or --dry-run")
			}

			paths, err := discover.Expand(args)
			if err != nil {
				return err
			}

			summary, err := pipeline.Run(cmd.Context(), gc, paths, opts.pipeline())
			if err != nil {
				return err
			}

			if opts.dryRun {
				printOutput(cmd.OutOrStdout(), summary, gc.Policy.ModuleVar)
			}

			return failedErr(summary)
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the generated text instead of splicing it")

	return cmd
}

func newCheckCmd(global *globalOptions) *cobra.Command {
	opts := &genOptions{dryRun: true}

	cmd := &cobra.Command{
		Use:   "check <header|dir>...",
		Short: "Fail when a destination is out of date or a file cannot be processed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := global.setup()
			if err != nil {
				return err
			}
			defer syncLogger(gc.Log)

			paths, err := discover.Expand(args)
			if err != nil {
				return err
			}

			summary, err := pipeline.Run(cmd.Context(), gc, paths, opts.pipeline())
			if err != nil {
				return err
			}

			if err := failedErr(summary); err != nil {
				return err
			}

			stale, err := pipeline.Stale(gc, summary, opts.pipeline())
			if err != nil {
				return err
			}

			if len(stale) > 0 {
				return errors.WithHint(errors.Newf("out of date: %s", strings.Join(stale, ", ")),
					"run the gen command with the same arguments")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) up to date\n", len(paths))

			return nil
		},
	}

	opts.bind(cmd)

	return cmd
}

func failedErr(summary *pipeline.Summary) error {
	failed := summary.Failed()
	if len(failed) == 0 {
		return nil
	}

	names := make([]string, 0, len(failed))
	for _, f := range failed {
		names = append(names, f.Path)
	}

	return errors.Newf("%d of %d file(s) skipped: %s", len(failed), len(summary.Files), strings.Join(names, ", "))
}

func printOutput(w io.Writer, summary *pipeline.Summary, moduleVar string) {
	fmt.Fprintln(w, "// glue")
	fmt.Fprint(w, summary.Output.GlueText(moduleVar))
	fmt.Fprintln(w, "# stub")
	fmt.Fprint(w, summary.Output.StubText())
}
