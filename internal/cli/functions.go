package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/pipeline"
)

// NewFunctionsCmd returns the command listing formula functions.
func NewFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the functions usable in formula steps",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			kinds, err := cc.Flags().GetBool("kinds")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			names := pipeline.Functions()
			if kinds {
				names = pipeline.Kinds()
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cc.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("kinds", false, "List transform kinds instead of functions")

	return cmd
}
