package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"pyglue-generator/internal/build"
	"pyglue-generator/internal/pipeline"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newDumpCmd(global *globalOptions) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "dump <header>",
		Short: "Print the declaration model (or the syntax tree) of one header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := global.setup()
			if err != nil {
				return err
			}
			defer syncLogger(gc.Log)

			out := cmd.OutOrStdout()

			if tree {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return errors.Wrapf(err, "reading %s", args[0])
				}

				source, _ := build.StripMarkers(raw, gc.Policy.PublishPrefixes, gc.Policy.PublishSuffixes)

				root, err := gc.Provider.Parse(cmd.Context(), source, gc.Encoding)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(root)
			}

			res := pipeline.ProcessFile(cmd.Context(), gc, args[0])
			res.Diags.Report(gc.Log, gc.Policy.Quiet)

			if res.Model == nil {
				return res.Err
			}

			dumpConfig.Fdump(out, res.Model)
			fmt.Fprintf(out, "rename rules: %d\n", res.Rules.Len())

			return res.Err
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Print the syntax tree as JSON instead of the model")

	return cmd
}
