package main

import (
	"fmt"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dictionary.json>",
		Short: "Check that a dictionary document parses and has unique keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := dictionary.NewFileLoader(args[0]).Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d measurements OK\n", dict.Name, len(dict.Measurements))
			return nil
		},
	}
}
