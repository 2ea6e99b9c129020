// Package track assembles rendered clips into the final episode audio. The
// concat list interleaves a shared silence clip between consecutive clips,
// never after the last one, so the produced track matches the computed
// chapter timeline.
package track

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"paperweights/internal/services"
	"paperweights/internal/services/ffmpeg"
	"paperweights/internal/synthesis"
)

// Assembler concatenates clips into one continuous track.
type Assembler struct {
	client ffmpeg.Client
	gap    time.Duration
}

// NewAssembler constructs an Assembler using the given silence gap.
func NewAssembler(client ffmpeg.Client, gap time.Duration) *Assembler {
	return &Assembler{client: client, gap: gap}
}

// ConcatEntries returns the ordered file list for the concat demuxer:
// clip, silence, clip, silence, ..., clip.
func ConcatEntries(clips []synthesis.Clip, silencePath string) ([]string, error) {
	if len(clips) == 0 {
		return nil, errors.New("no clips to concatenate")
	}
	for i := 1; i < len(clips); i++ {
		if clips[i].ChunkIndex <= clips[i-1].ChunkIndex {
			return nil, fmt.Errorf("clips out of order at position %d", i)
		}
	}
	entries := make([]string, 0, len(clips)*2-1)
	for i, clip := range clips {
		entries = append(entries, clip.Path)
		if i < len(clips)-1 {
			entries = append(entries, silencePath)
		}
	}
	return entries, nil
}

// Assemble renders the silence clip, writes the concat list, and produces
// outputPath from the ordered clips. workDir holds the intermediate files.
func (a *Assembler) Assemble(ctx context.Context, clips []synthesis.Clip, workDir, outputPath string) error {
	silencePath := filepath.Join(workDir, "silence.mp3")
	if err := a.client.GenerateSilence(ctx, silencePath, a.gap); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "silence", "generate silence clip", err)
	}

	entries, err := ConcatEntries(clips, silencePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "assembly", "concat", "build concat list", err)
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := ffmpeg.WriteConcatList(listPath, entries); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "concat", "write concat list", err)
	}

	if err := a.client.Concat(ctx, listPath, outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "assembly", "concat", "concatenate clips", err)
	}
	return nil
}

// VerifyDuration compares the measured track duration against the expected
// timeline total. Encoding overhead gives a small drift; anything past the
// tolerance means the track and chapter marks disagree.
func VerifyDuration(measured, expected, tolerance time.Duration) error {
	drift := measured - expected
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return fmt.Errorf("track duration %s drifts from timeline %s by %s (tolerance %s)",
			measured, expected, drift, tolerance)
	}
	return nil
}
