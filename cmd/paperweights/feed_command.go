package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paperweights/internal/feed"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Regenerate the RSS feed from published episodes",
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

			if stdout {
				episodes, err := ledger.Published(cmd.Context())
				if err != nil {
					return err
				}
				gen := feed.NewGenerator(cfg.Feed, cfg.Publish.Repo, cfg.Publish.AssetsTag, coverAssetName(cfg))
				data, err := gen.Build(episodes)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			publisher := newPublisher(ctx, cfg, ledger)
			if err := publisher.RegenerateFeed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Feed regenerated and uploaded")
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the feed XML instead of uploading it")
	return cmd
}
