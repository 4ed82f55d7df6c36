package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
)

const resumeExample = `  # Continue a failed run from its last snapshot
  cfgpipe resume --pipeline generate.yaml --checkpoint-db runs.db --run-id gen-1
`

// NewResumeCmd returns the resume command.
func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resume",
		Short:   "Continue a checkpointed run from its last snapshot",
		Example: resumeExample,
		Args:    cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			f, err := readRunFlags(cc)
			if err != nil {
				return err
			}

			p, err := f.loadPipeline()
			if err != nil {
				return err
			}

			store, err := checkpoint.NewSQLiteStore(f.checkpointDB)
			if err != nil {
				return err
			}
			defer store.Close()

			out, err := p.Resume(cc.Context(), store, f.runID, cfgpipe.WithLogger(slog.Default()))
			if err != nil {
				return fmt.Errorf("resume %s: %w", f.runID, err)
			}
			return f.writeOutput(cc, out)
		},
	}

	addRunFlags(cmd)
	for _, name := range []string{"checkpoint-db", "run-id"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}
