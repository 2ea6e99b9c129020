package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"paperweights/internal/assembly"
	"paperweights/internal/timeline"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "Episode ledger utilities",
	}

	episodesCmd.AddCommand(newEpisodesListCommand(ctx))
	episodesCmd.AddCommand(newEpisodesScanCommand(ctx))

	return episodesCmd
}

func newEpisodesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known episodes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			episodes, err := ledger.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes recorded; run `paperweights episodes scan` to import existing artifacts.")
				return nil
			}

			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				duration := time.Duration(ep.DurationSeconds * float64(time.Second))
				rows = append(rows, []string{
					ep.Date,
					ep.Title,
					timeline.FormatTimestamp(duration),
					humanize.IBytes(uint64(ep.SizeBytes)),
					fmt.Sprintf("%d", ep.FailureCount),
					yesNo(ep.Published()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Date", "Title", "Duration", "Size", "Skipped", "Published"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newEpisodesScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Register episode artifacts the ledger does not know yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer ledger.Close()

			result, err := ledger.Scan(cmd.Context(), cfg.Paths.EpisodesDir, assembly.Describer(cfg))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %s: %d added, %d already known\n",
				cfg.Paths.EpisodesDir, len(result.Added), len(result.Skipped))
			return nil
		},
	}
}
