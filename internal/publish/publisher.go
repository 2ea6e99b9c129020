package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"paperweights/internal/feed"
	"paperweights/internal/fileutil"
	"paperweights/internal/logging"
	"paperweights/internal/services"
	"paperweights/internal/services/gh"
	"paperweights/internal/store"
)

// Step names the publish state machine's phases; failures report the step
// that was executing when the run aborted.
type Step string

const (
	StepDeleteExisting Step = "delete-existing-release"
	StepCreateRelease  Step = "create-release"
	StepEnsureAssets   Step = "ensure-assets-release"
	StepRegenerateFeed Step = "regenerate-feed"
	StepUploadFeed     Step = "upload-feed"
	StepRecordLedger   Step = "record-ledger"
)

// Request describes one publish run.
type Request struct {
	Date      string
	AudioPath string
	Title     string
	Notes     string
}

// Result reports a completed publish.
type Result struct {
	Date       string
	ReleaseTag string
	ReleaseURL string
	Replaced   bool
}

// StepError wraps a failure with the step it occurred in.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("publish step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures a Publisher.
type Options struct {
	Repo          string
	AssetsTag     string
	CoverArtPath  string
	FeedAssetName string
	// LockPath serializes publishes across processes.
	LockPath string
	Logger   *slog.Logger
}

// Publisher owns the full release lifecycle for one episode date.
type Publisher struct {
	releases gh.ReleaseStore
	ledger   *store.Store
	feedGen  *feed.Generator
	opts     Options
}

// New constructs a Publisher.
func New(releases gh.ReleaseStore, ledger *store.Store, feedGen *feed.Generator, opts Options) *Publisher {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Publisher{releases: releases, ledger: ledger, feedGen: feedGen, opts: opts}
}

// Publish runs the state machine for req.Date. Re-running after any failure
// is safe: the dated release is always normalized to a clean slate before
// the new one is created.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	if req.Date == "" {
		return Result{}, services.Wrap(services.ErrValidation, "publish", "publish", "episode date required", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "publish", "publish", "episode title required", nil)
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "publish", "publish", "audio artifact missing", err)
	}

	unlock, err := p.acquireLock(ctx)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	log := p.opts.Logger
	result := Result{Date: req.Date, ReleaseTag: req.Date}
	result.ReleaseURL = fmt.Sprintf("https://github.com/%s/releases/tag/%s", p.opts.Repo, req.Date)

	// Step 1: full replace semantics, never a partial update.
	exists, err := p.releases.ReleaseExists(ctx, req.Date)
	if err != nil {
		return Result{}, &StepError{Step: StepDeleteExisting, Err: err}
	}
	if exists {
		log.Info("replacing existing release", logging.String("tag", req.Date))
		if err := p.releases.DeleteRelease(ctx, req.Date); err != nil {
			return Result{}, &StepError{Step: StepDeleteExisting, Err: err}
		}
		result.Replaced = true
	}

	// Step 2: create the dated release with the audio artifact attached.
	if err := p.releases.CreateRelease(ctx, req.Date, req.Title, req.Notes, req.AudioPath); err != nil {
		return Result{}, &StepError{Step: StepCreateRelease, Err: err}
	}
	log.Info("release created", logging.String("tag", req.Date), logging.String("asset", filepath.Base(req.AudioPath)))

	// Step 3: the assets release is a lazy singleton; never touched once it
	// exists.
	if err := p.ensureAssetsRelease(ctx); err != nil {
		return Result{}, &StepError{Step: StepEnsureAssets, Err: err}
	}

	// Step 4: record the publish, then rebuild the feed wholesale from the
	// ledger so it reflects exactly one entry per published date.
	if err := p.ledger.MarkPublished(ctx, req.Date, req.Date); err != nil {
		return Result{}, &StepError{Step: StepRecordLedger, Err: err}
	}
	feedPath, err := p.regenerateFeed(ctx)
	if err != nil {
		return Result{}, &StepError{Step: StepRegenerateFeed, Err: err}
	}
	defer os.RemoveAll(filepath.Dir(feedPath))

	// Step 5: overwrite the shared feed asset.
	if err := p.releases.UploadAsset(ctx, p.opts.AssetsTag, feedPath); err != nil {
		return Result{}, &StepError{Step: StepUploadFeed, Err: err}
	}
	log.Info("feed uploaded", logging.String("asset", p.opts.FeedAssetName))

	return result, nil
}

// RegenerateFeed rebuilds and uploads the feed without touching any dated
// release; used after ledger edits or metadata fixes.
func (p *Publisher) RegenerateFeed(ctx context.Context) error {
	unlock, err := p.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	feedPath, err := p.regenerateFeed(ctx)
	if err != nil {
		return &StepError{Step: StepRegenerateFeed, Err: err}
	}
	defer os.RemoveAll(filepath.Dir(feedPath))

	if err := p.ensureAssetsRelease(ctx); err != nil {
		return &StepError{Step: StepEnsureAssets, Err: err}
	}
	if err := p.releases.UploadAsset(ctx, p.opts.AssetsTag, feedPath); err != nil {
		return &StepError{Step: StepUploadFeed, Err: err}
	}
	return nil
}

func (p *Publisher) ensureAssetsRelease(ctx context.Context) error {
	exists, err := p.releases.ReleaseExists(ctx, p.opts.AssetsTag)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	var assets []string
	if p.opts.CoverArtPath != "" {
		if _, err := os.Stat(p.opts.CoverArtPath); err == nil {
			assets = append(assets, p.opts.CoverArtPath)
		} else {
			p.opts.Logger.Warn("cover art missing, creating assets release without it",
				logging.String("path", p.opts.CoverArtPath))
		}
	}
	p.opts.Logger.Info("creating assets release", logging.String("tag", p.opts.AssetsTag))
	return p.releases.CreateRelease(ctx, p.opts.AssetsTag, "Podcast Assets", "Shared static assets.", assets...)
}

// regenerateFeed writes the feed document to a temp file and returns its
// path; the file carries the feed asset name so the upload keeps it.
func (p *Publisher) regenerateFeed(ctx context.Context) (string, error) {
	episodes, err := p.ledger.Published(ctx)
	if err != nil {
		return "", err
	}
	body, err := p.feedGen.Build(episodes)
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp("", "paperweights-feed-")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, p.opts.FeedAssetName)
	if err := fileutil.WriteFileAtomic(path, body, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

func (p *Publisher) acquireLock(ctx context.Context) (func(), error) {
	if p.opts.LockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(p.opts.LockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "publish", "lock", "prepare lock directory", err)
	}
	lock := flock.New(p.opts.LockPath)
	ok, err := lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "publish", "lock", "acquire publish lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "publish", "lock", "another publish is in progress", nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
