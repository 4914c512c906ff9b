package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-phonon/annotation"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var sampleRate int

	cmd := &cobra.Command{
		Use:   "inspect ANNOTATION",
		Short: "Summarize the spans of a label file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if sampleRate <= 0 {
				return fmt.Errorf("--sample-rate must be positive")
			}

			idx, err := annotation.ParseFile(args[0], cfg.Annotation.Separator, sampleRate)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(idx.Names()))
			for _, name := range idx.Names() {
				spans := idx.Spans(name)
				first, last, total := spans[0].Start, spans[0].End, 0
				for _, s := range spans {
					first = min(first, s.Start)
					last = max(last, s.End)
					total += s.Len()
				}
				kind := "standard"
				if !annotation.ParseLabel(name).Standard() {
					kind = "unrecognized"
				}
				rows = append(rows, []string{
					name,
					kind,
					strconv.Itoa(len(spans)),
					strconv.Itoa(first),
					strconv.Itoa(last),
					strconv.Itoa(total),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d spans\n", args[0], idx.Len())
			fmt.Fprintln(out, renderTable(
				[]string{"Label", "Kind", "Spans", "First", "Last", "Samples"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleRate, "sample-rate", 16000, "Sample rate used to convert times to sample indices")
	return cmd
}
