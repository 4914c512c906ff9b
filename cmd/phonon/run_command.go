package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-phonon/config"
	"github.com/RyanBlaney/sonido-phonon/pipeline"
)

type runFlags struct {
	dataDir             string
	outputDir           string
	workers             int
	progress            bool
	mode                string
	includeUnrecognized bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract features for every subject in the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, *base)
			if err != nil {
				return err
			}

			subjects, err := pipeline.Discover(cfg.Paths.DataDir, pipeline.Patterns{
				Audio:      cfg.Discovery.AudioPattern,
				Annotation: cfg.Discovery.AnnotationPattern,
				Metadata:   cfg.Discovery.MetadataPattern,
			})
			if err != nil {
				return err
			}

			var opts []pipeline.Option
			if cfg.Pipeline.Progress {
				opts = append(opts, pipeline.WithProgress(cmd.ErrOrStderr()))
			}
			p, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}

			summary, runErr := p.Run(cmd.Context(), subjects)
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&flags.dataDir, "data", "", "Directory of subject folders")
	cmd.Flags().StringVar(&flags.outputDir, "out", "", "Directory for the per-label CSV files")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Subjects processed concurrently")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "Show a progress bar")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Existing dataset handling (append, truncate)")
	cmd.Flags().BoolVar(&flags.includeUnrecognized, "include-unrecognized", false, "Also write datasets for unrecognized labels")

	return cmd
}

// apply overlays explicitly set flags on a copy of the loaded configuration.
func (f runFlags) apply(cmd *cobra.Command, cfg config.Config) (*config.Config, error) {
	set := cmd.Flags().Changed
	var err error
	if set("data") {
		if cfg.Paths.DataDir, err = config.ExpandPath(f.dataDir); err != nil {
			return nil, fmt.Errorf("resolve --data: %w", err)
		}
	}
	if set("out") {
		if cfg.Paths.OutputDir, err = config.ExpandPath(f.outputDir); err != nil {
			return nil, fmt.Errorf("resolve --out: %w", err)
		}
	}
	if set("workers") {
		cfg.Pipeline.Workers = f.workers
	}
	if set("progress") {
		cfg.Pipeline.Progress = f.progress
	}
	if set("mode") {
		cfg.Dataset.Mode = strings.ToLower(strings.TrimSpace(f.mode))
	}
	if set("include-unrecognized") {
		cfg.Dataset.IncludeUnrecognized = f.includeUnrecognized
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func printSummary(out io.Writer, s *pipeline.Summary) {
	fmt.Fprintf(out, "Run %s\n", s.RunID)
	fmt.Fprintln(out, renderTable(
		[]string{"Outcome", "Subjects"},
		[][]string{
			{"processed", strconv.Itoa(len(s.Processed))},
			{"skipped", strconv.Itoa(len(s.Skipped))},
			{"failed", strconv.Itoa(len(s.Failed))},
		},
		[]columnAlignment{alignLeft, alignRight},
	))

	if len(s.Files) > 0 {
		rows := make([][]string, 0, len(s.Files))
		for _, f := range s.Files {
			rows = append(rows, []string{f.Label, strconv.Itoa(f.Rows), f.Path})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Label", "Rows", "File"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))
	}

	problems := append(append([]pipeline.SubjectResult{}, s.Skipped...), s.Failed...)
	if len(problems) > 0 {
		rows := make([][]string, 0, len(problems))
		for _, r := range problems {
			rows = append(rows, []string{r.ID, string(r.Outcome), r.Kind, r.Reason})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Subject", "Outcome", "Kind", "Reason"},
			rows,
			nil,
		))
	}
}
