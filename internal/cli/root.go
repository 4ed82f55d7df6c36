// Package cli implements the cfgpipe command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

const rootDesc = `cfgpipe transforms nested YAML/JSON configurations through pipelines
of small steps declared in a YAML file.
`

// NewRootCmd returns the root command with all subcommands.
func NewRootCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         "Run configuration transform pipelines",
		Long:          rootDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	cmd.PersistentFlags().String("log-level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", TextFormat, "Set the log format (text, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log-level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log-format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
		}

		h, err := CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewResumeCmd())
	cmd.AddCommand(NewFunctionsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
