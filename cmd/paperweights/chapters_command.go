package main

import (
	"fmt"
	"sort"

	"github.com/bogem/id3v2/v2"
	"github.com/spf13/cobra"

	"paperweights/internal/store"
	"paperweights/internal/timeline"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <date>",
		Short: "List the chapter marks embedded in an episode's audio",
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

			audioPath, ok := store.BestAudioFile(cfg.Paths.EpisodesDir, date)
			if !ok {
				return fmt.Errorf("no audio artifact for %s in %s", date, cfg.Paths.EpisodesDir)
			}

			tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true, ParseFrames: []string{"CHAP"}})
			if err != nil {
				return fmt.Errorf("open tag on %s: %w", audioPath, err)
			}
			defer tag.Close()

			var chaps []id3v2.ChapterFrame
			for _, framer := range tag.GetFrames("CHAP") {
				if chap, ok := framer.(id3v2.ChapterFrame); ok {
					chaps = append(chaps, chap)
				}
			}
			if len(chaps) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No chapters in %s\n", audioPath)
				return nil
			}
			sort.Slice(chaps, func(i, j int) bool { return chaps[i].StartTime < chaps[j].StartTime })

			rows := make([][]string, 0, len(chaps))
			for _, chap := range chaps {
				title := ""
				if chap.Title != nil {
					title = chap.Title.Text
				}
				rows = append(rows, []string{
					timeline.FormatTimestamp(chap.StartTime),
					timeline.FormatTimestamp(chap.EndTime),
					title,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Start", "End", "Chapter"}, rows, []columnAlignment{alignRight, alignRight, alignLeft}))
			return nil
		},
	}
}
