package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/checkpoint"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/config"
	"github.com/randalmurphal/cfgpipe/pkg/cfgpipe/pipeline"
)

const runExample = `  # Generate a configuration from scratch and print it as YAML
  cfgpipe run --pipeline generate.yaml

  # Transform an existing document into a file
  cfgpipe run --pipeline tune.yaml --input base.yaml --output tuned.json

  # Reproducible jitter, resumable through a snapshot database
  cfgpipe run --pipeline generate.yaml --seed 42 --checkpoint-db runs.db --run-id gen-1
`

// ErrInvalidArgument wraps flag and argument errors.
var ErrInvalidArgument = errors.New("invalid argument")

type runFlags struct {
	pipeline     string
	input        string
	output       string
	format       string
	checkpointDB string
	runID        string
	seed         uint64
	seedSet      bool
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("pipeline", "", "Pipeline definition file (YAML or JSON)")
	cmd.Flags().String("output", "-", "Output file, format by extension; - writes to stdout")
	cmd.Flags().String("format", string(config.FormatYAML), "Format when writing to stdout (yaml, json)")
	cmd.Flags().String("checkpoint-db", "", "SQLite database for run snapshots")
	cmd.Flags().String("run-id", "", "Run ID used in logs and snapshots")
	cmd.Flags().Uint64("seed", 0, "Seed for randomized functions, overrides the definition's seed")

	if err := cmd.MarkFlagRequired("pipeline"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagFilename("pipeline", "yaml", "yml", "json"); err != nil {
		panic(err)
	}
}

func readRunFlags(cc *cobra.Command) (runFlags, error) {
	flags := cc.Flags()

	var (
		f    runFlags
		err  error
		merr error
	)

	if f.pipeline, err = flags.GetString("pipeline"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if flags.Lookup("input") != nil {
		if f.input, err = flags.GetString("input"); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if f.output, err = flags.GetString("output"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if f.format, err = flags.GetString("format"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if f.checkpointDB, err = flags.GetString("checkpoint-db"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if f.runID, err = flags.GetString("run-id"); err != nil {
		merr = multierror.Append(merr, err)
	}
	if f.seed, err = flags.GetUint64("seed"); err != nil {
		merr = multierror.Append(merr, err)
	}
	f.seedSet = flags.Changed("seed")

	switch config.Format(f.format) {
	case config.FormatYAML, config.FormatJSON:
	default:
		merr = multierror.Append(merr, fmt.Errorf("unknown output format %q", f.format))
	}

	if merr != nil {
		return f, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}
	return f, nil
}

func (f runFlags) loadPipeline() (*pipeline.Pipeline, error) {
	var opts []pipeline.Option
	if f.seedSet {
		opts = append(opts, pipeline.WithSeed(f.seed))
	}
	return pipeline.Load(f.pipeline, opts...)
}

func (f runFlags) writeOutput(cc *cobra.Command, cfg map[string]any) error {
	if f.output == "" || f.output == "-" {
		return config.Encode(cc.OutOrStdout(), cfg, config.Format(f.format), config.EncodeOptions{})
	}
	return config.Write(f.output, cfg, config.EncodeOptions{})
}

// NewRunCmd returns the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a pipeline on a configuration",
		Example: runExample,
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

			cfg := map[string]any{}
			if f.input != "" {
				if cfg, err = config.Load(f.input); err != nil {
					return fmt.Errorf("load input: %w", err)
				}
			}

			runID := f.runID
			if runID == "" {
				runID = cfgpipe.NewRunID()
			}
			logger := slog.Default()
			opts := []cfgpipe.RunOption{cfgpipe.WithLogger(logger), cfgpipe.WithRunID(runID)}

			if f.checkpointDB != "" {
				store, err := checkpoint.NewSQLiteStore(f.checkpointDB)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, cfgpipe.WithCheckpointing(store))
			}

			out, err := p.Run(cc.Context(), cfg, opts...)
			if err != nil {
				if f.checkpointDB != "" {
					return fmt.Errorf("run %s failed, resume with --run-id %s: %w", p.Name, runID, err)
				}
				return fmt.Errorf("run %s failed: %w", p.Name, err)
			}
			return f.writeOutput(cc, out)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().String("input", "", "Input configuration (YAML or JSON); empty starts from {}")

	return cmd
}
