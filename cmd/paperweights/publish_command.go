package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperweights/internal/assembly"
	"paperweights/internal/config"
	"paperweights/internal/feed"
	"paperweights/internal/logging"
	"paperweights/internal/publish"
	"paperweights/internal/services/gh"
	"paperweights/internal/store"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var reassemble bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish <date>",
		Short: "Assemble (if needed) and publish the episode for a date",
		Long: `Publish releases the episode for the given date: the audio asset goes into
a dated GitHub release and the syndication feed is regenerated from every
published episode. An already-assembled episode is reused unless --reassemble
is set; re-running publish for a date replaces the previous release.`,
		Args: cobra.ExactArgs(1),
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

			notifier := ctx.notifier()

			ep, err := ledger.Get(cmd.Context(), date)
			needAssembly := reassemble
			switch {
			case errors.Is(err, store.ErrNotFound):
				needAssembly = true
			case err != nil:
				return err
			}
			if !needAssembly {
				if _, ok := store.BestAudioFile(cfg.Paths.EpisodesDir, date); !ok {
					needAssembly = true
				}
			}

			if needAssembly {
				pipe := assembly.New(cfg, assembly.Options{
					Ledger:   ledger,
					Notifier: notifier,
					Logger:   logger,
				})
				outcome, err := pipe.Run(cmd.Context(), date)
				if err != nil {
					notifyError(cmd.Context(), ctx, err, "assembly "+date)
					return err
				}
				printOutcome(cmd, outcome)
				if ep, err = ledger.Get(cmd.Context(), date); err != nil {
					return err
				}
			}

			audioPath, ok := store.BestAudioFile(cfg.Paths.EpisodesDir, date)
			if !ok {
				return fmt.Errorf("no audio artifact for %s in %s", date, cfg.Paths.EpisodesDir)
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: would publish %s (%q) from %s to %s\n",
					date, ep.Title, audioPath, cfg.Publish.Repo)
				return nil
			}

			if err := notifier.NotifyPublishStarted(cmd.Context(), date); err != nil {
				logger.Warn("publish-start notification not delivered", logging.Error(err))
			}

			publisher := newPublisher(ctx, cfg, ledger)
			result, err := publisher.Publish(cmd.Context(), publish.Request{
				Date:      date,
				AudioPath: audioPath,
				Title:     ep.Title,
				Notes:     ep.Description,
			})
			if err != nil {
				notifyError(cmd.Context(), ctx, err, "publish "+date)
				return err
			}

			if err := notifier.NotifyPublishCompleted(cmd.Context(), date, ep.Title, result.ReleaseURL); err != nil {
				logger.Warn("publish notification not delivered", logging.Error(err))
			}

			out := cmd.OutOrStdout()
			if result.Replaced {
				fmt.Fprintf(out, "Replaced release %s\n", result.ReleaseTag)
			}
			fmt.Fprintf(out, "Published %s\n%s\n", date, result.ReleaseURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reassemble, "reassemble", false, "Rebuild the audio track even if one exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop before any remote mutation")
	return cmd
}

func newPublisher(ctx *commandContext, cfg *config.Config, ledger *store.Store) *publish.Publisher {
	logger, _ := ctx.ensureLogger()
	releases := gh.NewCLI(cfg.Publish.Repo, gh.WithBinary(cfg.GhBinary()))
	feedGen := feed.NewGenerator(cfg.Feed, cfg.Publish.Repo, cfg.Publish.AssetsTag, coverAssetName(cfg))
	return publish.New(releases, ledger, feedGen, publish.Options{
		Repo:          cfg.Publish.Repo,
		AssetsTag:     cfg.Publish.AssetsTag,
		CoverArtPath:  cfg.Publish.CoverArtPath,
		FeedAssetName: cfg.Publish.FeedAssetName,
		LockPath:      ctx.lockPath(),
		Logger:        logger,
	})
}

func coverAssetName(cfg *config.Config) string {
	if cfg.Publish.CoverArtPath == "" {
		return "cover.jpg"
	}
	return filepath.Base(cfg.Publish.CoverArtPath)
}

func notifyError(c context.Context, ctx *commandContext, err error, operation string) {
	if nerr := ctx.notifier().NotifyError(c, err, operation); nerr != nil {
		if logger, lerr := ctx.ensureLogger(); lerr == nil {
			logger.Warn("error notification not delivered", logging.Error(nerr))
		}
	}
}
