package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"paperweights/internal/chapters"
	"paperweights/internal/config"
	"paperweights/internal/digest"
	"paperweights/internal/episode"
	"paperweights/internal/fileutil"
	"paperweights/internal/logging"
	"paperweights/internal/media/ffprobe"
	"paperweights/internal/media/mp3info"
	"paperweights/internal/notifications"
	"paperweights/internal/script"
	"paperweights/internal/services"
	"paperweights/internal/services/ffmpeg"
	"paperweights/internal/services/sag"
	"paperweights/internal/store"
	"paperweights/internal/synthesis"
	"paperweights/internal/timeline"
	"paperweights/internal/track"
)

// Synthesizer renders script chunks into audio clips.
type Synthesizer interface {
	Render(ctx context.Context, chunks []script.Chunk, workDir string) (synthesis.Result, error)
}

// TrackAssembler concatenates rendered clips into a single episode track.
type TrackAssembler interface {
	Assemble(ctx context.Context, clips []synthesis.Clip, workDir, outputPath string) error
}

// Options carries the pipeline collaborators. Zero fields are filled from the
// configuration with the real synthesis, ffmpeg, and ffprobe clients.
type Options struct {
	Synth     Synthesizer
	Assembler TrackAssembler
	Ledger    *store.Store
	Notifier  notifications.Service
	// Probe measures the assembled track's playback duration in seconds.
	Probe func(ctx context.Context, path string) (float64, error)
	// WriteChapters embeds the chapter timeline into the finished track.
	WriteChapters func(path string, tl timeline.Timeline) error
	Logger        *slog.Logger
}

// Outcome summarizes one pipeline run.
type Outcome struct {
	Metadata   episode.Metadata
	Timeline   timeline.Timeline
	AudioPath  string
	ChunkCount int
	Failures   []synthesis.Failure
}

// Pipeline assembles one episode from its script file.
type Pipeline struct {
	cfg  *config.Config
	opts Options
}

// New constructs a Pipeline, wiring default collaborators from the
// configuration where the caller left them nil.
func New(cfg *config.Config, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	opts.Logger = logging.NewComponentLogger(opts.Logger, "assembly")
	if opts.Synth == nil {
		client := sag.NewCLI(sag.WithBinary(cfg.SagBinary()), sag.WithModelID(cfg.Synthesis.ModelID))
		opts.Synth = synthesis.New(client, synthesis.Options{
			Voices:       cfg.Synthesis.Hosts,
			MaxRetries:   cfg.Synthesis.MaxRetries,
			ChunkTimeout: time.Duration(cfg.Synthesis.TimeoutSeconds) * time.Second,
			Logger:       opts.Logger,
		})
	}
	if opts.Assembler == nil {
		client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
		opts.Assembler = track.NewAssembler(client, silenceGap(cfg))
	}
	if opts.Probe == nil {
		binary := cfg.FFprobeBinary()
		opts.Probe = func(ctx context.Context, path string) (float64, error) {
			result, err := ffprobe.Inspect(ctx, binary, path)
			if err != nil {
				return 0, err
			}
			if result.AudioStreamCount() == 0 {
				return 0, fmt.Errorf("no audio stream in %s", filepath.Base(path))
			}
			return result.DurationSeconds(), nil
		}
	}
	if opts.WriteChapters == nil {
		opts.WriteChapters = chapters.Write
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewService(cfg.Notifications)
	}
	return &Pipeline{cfg: cfg, opts: opts}
}

// Run assembles the episode for the given date: parse, chunk, synthesize,
// compute the timeline, concatenate, tag chapters, derive metadata, and
// record the episode in the ledger. All intermediate files live in a
// run-scoped staging directory that is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, date string) (*Outcome, error) {
	runID := uuid.NewString()
	ctx = services.WithEpisode(ctx, date)
	ctx = services.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, p.opts.Logger)

	scriptPath, ok := store.BestScriptFile(p.cfg.Paths.EpisodesDir, date)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "assembly", "locate script",
			fmt.Sprintf("no script file for %s in %s", date, p.cfg.Paths.EpisodesDir), nil)
	}
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembly", "read script", "reading script file", err)
	}

	parser := script.NewParser(speakerNames(p.cfg.Synthesis.Hosts))
	doc, err := parser.Parse(date, string(content))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembly", "parse script", "script rejected", err)
	}

	limit := p.cfg.Synthesis.MaxChunkChars
	if limit <= 0 {
		limit = script.DefaultMaxChunkChars
	}
	chunks := script.ChunkDocument(doc, limit)
	log.Info("script chunked",
		logging.String("script", filepath.Base(scriptPath)),
		logging.Int("sections", len(doc.Sections)),
		logging.Int("chunks", len(chunks)))

	workDir := filepath.Join(p.cfg.Paths.StagingDir, "assemble-"+runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "assembly", "staging", "creating staging directory", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("staging cleanup failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	result, err := p.opts.Synth.Render(ctx, chunks, workDir)
	if err != nil {
		return nil, err
	}
	if len(result.Failures) > 0 {
		p.notifyFailures(ctx, date, len(result.Failures), len(chunks))
	}
	if len(result.Failures) > p.cfg.Synthesis.MaxFailures {
		return nil, services.Wrap(services.ErrValidation, "assembly", "synthesize",
			fmt.Sprintf("%d of %d chunks failed synthesis (threshold %d)",
				len(result.Failures), len(chunks), p.cfg.Synthesis.MaxFailures), nil)
	}
	for _, failure := range result.Failures {
		log.Warn("chunk skipped",
			logging.Int("chunk", failure.ChunkIndex),
			logging.String("speaker", failure.Speaker),
			logging.String("reason", failure.Reason))
	}

	tl, err := timeline.Compute(doc, result.Clips, silenceGap(p.cfg))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembly", "timeline", "computing chapter timeline", err)
	}

	trackPath := filepath.Join(workDir, date+"-podcast.mp3")
	if err := p.opts.Assembler.Assemble(ctx, result.Clips, workDir, trackPath); err != nil {
		return nil, err
	}

	durationSeconds := p.measure(ctx, trackPath, tl)

	if err := p.opts.WriteChapters(trackPath, tl); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "assembly", "chapters", "embedding chapter tags", err)
	}

	sizeBytes, err := fileutil.FileSize(trackPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembly", "finalize", "reading track size", err)
	}

	dg, err := digest.Load(p.cfg.Paths.DigestDir, date)
	if err != nil {
		log.Warn("digest unreadable, paper links omitted", logging.Error(err))
		dg = digest.Digest{}
	}

	finalPath := p.artifactPath(date)
	meta := episode.Build(episode.Input{
		Date:            date,
		Document:        doc,
		Digest:          dg,
		Timeline:        tl,
		DurationSeconds: durationSeconds,
		SizeBytes:       sizeBytes,
		AudioFile:       filepath.Base(finalPath),
		MaxListedPapers: p.cfg.Feed.MaxListedPapers,
	})

	if err := fileutil.CopyFile(trackPath, finalPath); err != nil {
		return nil, services.Wrap(services.ErrValidation, "assembly", "finalize", "moving track to episodes directory", err)
	}

	if p.opts.Ledger != nil {
		err := p.opts.Ledger.Upsert(ctx, store.Episode{
			Date:            date,
			Title:           meta.Title,
			Description:     meta.Description,
			AudioFile:       meta.AudioFile,
			DurationSeconds: durationSeconds,
			SizeBytes:       sizeBytes,
			FailureCount:    len(result.Failures),
		})
		if err != nil {
			return nil, err
		}
	}

	log.Info("episode assembled",
		logging.String("date", date),
		logging.String("audio", finalPath),
		logging.Duration("duration", tl.Total),
		logging.Int("failures", len(result.Failures)))

	return &Outcome{
		Metadata:   meta,
		Timeline:   tl,
		AudioPath:  finalPath,
		ChunkCount: len(chunks),
		Failures:   result.Failures,
	}, nil
}

// measure probes the assembled track and checks it against the computed
// timeline. Probe problems degrade to the timeline's own total rather than
// failing the run.
func (p *Pipeline) measure(ctx context.Context, path string, tl timeline.Timeline) float64 {
	log := p.opts.Logger

	measured, err := p.opts.Probe(ctx, path)
	if err != nil {
		log.Warn("ffprobe failed, falling back to frame walk", logging.Error(err))
		measured, err = mp3info.Duration(path)
		if err != nil {
			log.Warn("duration probe failed, using timeline total", logging.Error(err))
			return tl.Total.Seconds()
		}
	}

	tolerance := time.Duration(p.cfg.Assembly.DriftToleranceMs) * time.Millisecond
	measuredDur := time.Duration(measured * float64(time.Second))
	if err := track.VerifyDuration(measuredDur, tl.Total, tolerance); err != nil {
		log.Warn("track duration drifts from timeline", logging.Error(err))
	}
	return measured
}

// artifactPath chooses the episode audio filename. The first assembly for a
// date takes the plain name; reassembly writes the -v2 variant, which the
// rest of the system prefers when both exist.
func (p *Pipeline) artifactPath(date string) string {
	base := filepath.Join(p.cfg.Paths.EpisodesDir, date+"-podcast.mp3")
	if _, err := os.Stat(base); err == nil {
		return filepath.Join(p.cfg.Paths.EpisodesDir, date+"-podcast-v2.mp3")
	}
	return base
}

func (p *Pipeline) notifyFailures(ctx context.Context, date string, failed, total int) {
	if err := p.opts.Notifier.NotifySynthesisFailures(ctx, date, failed, total); err != nil {
		p.opts.Logger.Warn("failure notification not delivered", logging.Error(err))
	}
}

func speakerNames(hosts map[string]string) []string {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func silenceGap(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Assembly.SilenceGapMs) * time.Millisecond
}
