package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"paperweights/internal/assembly"
	"paperweights/internal/config"
	"paperweights/internal/preflight"
	"paperweights/internal/timeline"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <date>",
		Short: "Synthesize and assemble the episode track for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			if err := validateDate(date); err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := requirePreflight(cfg); err != nil {
				return err
			}
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			pipe := assembly.New(cfg, assembly.Options{
				Ledger:   ledger,
				Notifier: ctx.notifier(),
				Logger:   logger,
			})
			outcome, err := pipe.Run(cmd.Context(), date)
			if err != nil {
				return err
			}

			printOutcome(cmd, outcome)
			return nil
		},
	}
}

func printOutcome(cmd *cobra.Command, outcome *assembly.Outcome) {
	out := cmd.OutOrStdout()
	meta := outcome.Metadata

	fmt.Fprintln(out, heading(out, meta.Title))
	fmt.Fprintf(out, "Audio:    %s\n", outcome.AudioPath)
	fmt.Fprintf(out, "Duration: %s\n", timeline.FormatTimestamp(outcome.Timeline.Total))
	fmt.Fprintf(out, "Size:     %s\n", humanize.IBytes(uint64(meta.SizeBytes)))
	if len(outcome.Failures) > 0 {
		fmt.Fprintf(out, "Skipped:  %d of %d chunks\n", len(outcome.Failures), outcome.ChunkCount)
	}

	rows := make([][]string, 0, len(outcome.Timeline.Marks))
	for _, mark := range outcome.Timeline.Marks {
		rows = append(rows, []string{
			timeline.FormatTimestamp(mark.Start),
			mark.Title,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Start", "Chapter"}, rows, []columnAlignment{alignRight, alignLeft}))
}

// requirePreflight refuses to start a run while any environment check fails.
func requirePreflight(cfg *config.Config) error {
	failures := preflight.Failures(preflight.RunAll(cfg))
	if len(failures) == 0 {
		return nil
	}
	details := make([]string, 0, len(failures))
	for _, f := range failures {
		details = append(details, fmt.Sprintf("%s: %s", f.Name, f.Detail))
	}
	return fmt.Errorf("preflight checks failed:\n  %s", strings.Join(details, "\n  "))
}
