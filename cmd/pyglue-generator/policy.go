package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyglue-generator/internal/policy"
)

func newPolicyCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect policy files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "defaults",
		Short: "Print the default policy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf := &policy.File{}
			policy.ApplyDefaults(pf)

			data, err := policy.Marshal(pf)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a policy file against the schema and the semantic rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				global.policyPath = args[0]
			}

			pol, err := global.loadPolicy()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "policy ok (version %s, hash %016x)\n", pol.Version, pol.Hash())

			return nil
		},
	})

	return cmd
}
