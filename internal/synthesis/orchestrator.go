package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"paperweights/internal/logging"
	"paperweights/internal/media/mp3info"
	"paperweights/internal/script"
	"paperweights/internal/services"
	"paperweights/internal/services/sag"
)

// Clip is one successfully rendered chunk.
type Clip struct {
	ChunkIndex      int
	SectionIndex    int
	Speaker         string
	Path            string
	DurationSeconds float64
	SizeBytes       int64
}

// Failure records a chunk that could not be rendered after all retries.
type Failure struct {
	ChunkIndex int
	Speaker    string
	Reason     string
}

// Result collects the outcome of rendering one episode's chunks.
type Result struct {
	Clips    []Clip
	Failures []Failure
}

// Options configures an Orchestrator.
type Options struct {
	// Voices maps speaker labels to voice identifiers. Every speaker that
	// appears in the chunk list must be present.
	Voices map[string]string
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// ChunkTimeout bounds a single synthesis call. Zero means no limit.
	ChunkTimeout time.Duration
	// Probe measures a clip's playback duration. Defaults to native MP3
	// frame walking.
	Probe func(path string) (float64, error)
	Logger *slog.Logger
}

// Orchestrator renders script chunks to audio clips via a synthesis client.
type Orchestrator struct {
	client sag.Client
	opts   Options
}

// New constructs an Orchestrator.
func New(client sag.Client, opts Options) *Orchestrator {
	if opts.Probe == nil {
		opts.Probe = mp3info.Duration
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Orchestrator{client: client, opts: opts}
}

// Render synthesizes every chunk into workDir, preserving chunk order in the
// returned clips. Chunks whose speaker has no configured voice fail the whole
// run; per-chunk synthesis errors are isolated into Result.Failures.
func (o *Orchestrator) Render(ctx context.Context, chunks []script.Chunk, workDir string) (Result, error) {
	if len(chunks) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "synthesis", "render", "no chunks to synthesize", nil)
	}
	for _, chunk := range chunks {
		if _, ok := o.opts.Voices[chunk.Speaker]; !ok {
			return Result{}, services.Wrap(services.ErrConfiguration, "synthesis", "render",
				fmt.Sprintf("no voice configured for speaker %q", chunk.Speaker), nil)
		}
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "synthesis", "render", "create work directory", err)
	}

	var result Result
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, services.Wrap(services.ErrTransient, "synthesis", "render", "synthesis cancelled", err)
		}
		clip, err := o.renderChunk(ctx, chunk, workDir)
		if err != nil {
			o.opts.Logger.Warn("chunk synthesis failed",
				logging.Int("chunk", chunk.Index),
				logging.String("speaker", chunk.Speaker),
				logging.Error(err))
			result.Failures = append(result.Failures, Failure{
				ChunkIndex: chunk.Index,
				Speaker:    chunk.Speaker,
				Reason:     err.Error(),
			})
			continue
		}
		result.Clips = append(result.Clips, clip)
	}
	return result, nil
}

func (o *Orchestrator) renderChunk(ctx context.Context, chunk script.Chunk, workDir string) (Clip, error) {
	outPath := filepath.Join(workDir, fmt.Sprintf("chunk_%04d.mp3", chunk.Index))
	voice := o.opts.Voices[chunk.Speaker]
	textLen := utf8.RuneCountInString(chunk.Text)

	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			o.opts.Logger.Info("retrying chunk synthesis",
				logging.Int("chunk", chunk.Index),
				logging.Int("attempt", attempt+1))
			_ = os.Remove(outPath)
		}

		if err := o.synthesizeOnce(ctx, chunk.Text, voice, outPath); err != nil {
			lastErr = err
			continue
		}

		// An unreadable clip is retried and, if it never resolves, counted
		// as a failed chunk like any other synthesis defect; operators can
		// tell the two apart by the reason prefix.
		duration, err := o.opts.Probe(outPath)
		if err != nil {
			lastErr = fmt.Errorf("clip unreadable: %w", err)
			continue
		}
		if err := ValidateClip(outPath, textLen, duration); err != nil {
			lastErr = err
			continue
		}

		info, err := os.Stat(outPath)
		if err != nil {
			lastErr = err
			continue
		}
		return Clip{
			ChunkIndex:      chunk.Index,
			SectionIndex:    chunk.SectionIndex,
			Speaker:         chunk.Speaker,
			Path:            outPath,
			DurationSeconds: duration,
			SizeBytes:       info.Size(),
		}, nil
	}
	_ = os.Remove(outPath)
	return Clip{}, fmt.Errorf("all %d attempts failed: %w", o.opts.MaxRetries+1, lastErr)
}

func (o *Orchestrator) synthesizeOnce(ctx context.Context, text, voice, outPath string) error {
	callCtx := ctx
	if o.opts.ChunkTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.ChunkTimeout)
		defer cancel()
	}
	return o.client.Synthesize(callCtx, sag.Request{Text: text, VoiceID: voice, OutputPath: outPath})
}
