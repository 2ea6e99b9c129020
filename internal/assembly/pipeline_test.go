package assembly

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperweights/internal/config"
	"paperweights/internal/script"
	"paperweights/internal/services"
	"paperweights/internal/store"
	"paperweights/internal/synthesis"
	"paperweights/internal/timeline"
)

const testDate = "2026-03-02"

const testScript = `## Cold Open

**Alex**: Good morning, this is the daily briefing.

**Maya**: Three papers today, one of them is a monster.

## Deep Dive 1: Sparse Attention Revisited

**Alex**: The headline result is a forty percent cut in memory.

**Maya**: And the ablations actually hold up for once.
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.EpisodesDir = filepath.Join(dir, "episodes")
	cfg.Paths.DigestDir = filepath.Join(dir, "digests")
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	for _, d := range []string{cfg.Paths.EpisodesDir, cfg.Paths.DigestDir, cfg.Paths.StagingDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &cfg
}

func writeScript(t *testing.T, cfg *config.Config, content string) {
	t.Helper()
	path := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-script.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func openLedger(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	ledger, err := store.Open(filepath.Join(t.TempDir(), "episodes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

// fakeSynth renders every chunk to a fixed duration, skipping the chunk
// indexes listed in fail.
type fakeSynth struct {
	perChunkSeconds float64
	fail            map[int]bool
}

func (f *fakeSynth) Render(_ context.Context, chunks []script.Chunk, workDir string) (synthesis.Result, error) {
	var result synthesis.Result
	for _, chunk := range chunks {
		if f.fail[chunk.Index] {
			result.Failures = append(result.Failures, synthesis.Failure{
				ChunkIndex: chunk.Index,
				Speaker:    chunk.Speaker,
				Reason:     "synthesis stub failure",
			})
			continue
		}
		result.Clips = append(result.Clips, synthesis.Clip{
			ChunkIndex:      chunk.Index,
			SectionIndex:    chunk.SectionIndex,
			Speaker:         chunk.Speaker,
			Path:            filepath.Join(workDir, fmt.Sprintf("chunk_%04d.mp3", chunk.Index)),
			DurationSeconds: f.perChunkSeconds,
			SizeBytes:       4096,
		})
	}
	return result, nil
}

// fakeAssembler writes a placeholder track instead of running ffmpeg.
type fakeAssembler struct {
	clips int
}

func (f *fakeAssembler) Assemble(_ context.Context, clips []synthesis.Clip, _ string, outputPath string) error {
	f.clips = len(clips)
	return os.WriteFile(outputPath, []byte(strings.Repeat("m", 2048)), 0o644)
}

func newTestPipeline(t *testing.T, cfg *config.Config, synth Synthesizer, asm TrackAssembler, ledger *store.Store) *Pipeline {
	t.Helper()
	return New(cfg, Options{
		Synth:         synth,
		Assembler:     asm,
		Ledger:        ledger,
		Probe:         func(context.Context, string) (float64, error) { return 20, nil },
		WriteChapters: func(string, timeline.Timeline) error { return nil },
	})
}

func TestRunAssemblesEpisode(t *testing.T) {
	cfg := testConfig(t)
	writeScript(t, cfg, testScript)
	ledger := openLedger(t, cfg)

	asm := &fakeAssembler{}
	pipe := newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5}, asm, ledger)

	outcome, err := pipe.Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcome.ChunkCount != 4 {
		t.Errorf("chunk count = %d, want 4", outcome.ChunkCount)
	}
	if asm.clips != 4 {
		t.Errorf("assembled %d clips, want 4", asm.clips)
	}
	if len(outcome.Timeline.Marks) != 2 {
		t.Fatalf("timeline marks = %d, want 2", len(outcome.Timeline.Marks))
	}
	// Four 5s clips with a 400ms gap after all but the last.
	want := 20*time.Second + 3*400*time.Millisecond
	if outcome.Timeline.Total != want {
		t.Errorf("timeline total = %v, want %v", outcome.Timeline.Total, want)
	}

	wantAudio := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-podcast.mp3")
	if outcome.AudioPath != wantAudio {
		t.Errorf("audio path = %q, want %q", outcome.AudioPath, wantAudio)
	}
	if _, err := os.Stat(wantAudio); err != nil {
		t.Errorf("episode artifact missing: %v", err)
	}

	ep, err := ledger.Get(context.Background(), testDate)
	if err != nil {
		t.Fatalf("ledger Get: %v", err)
	}
	if ep.FailureCount != 0 {
		t.Errorf("failure count = %d, want 0", ep.FailureCount)
	}
	if ep.Title == "" || ep.AudioFile != testDate+"-podcast.mp3" {
		t.Errorf("unexpected ledger row: %+v", ep)
	}
	if ep.Published() {
		t.Error("fresh episode must not be marked published")
	}
}

func TestRunCleansStagingOnSuccessAndFailure(t *testing.T) {
	cfg := testConfig(t)
	writeScript(t, cfg, testScript)

	pipe := newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5}, &fakeAssembler{}, nil)
	if _, err := pipe.Run(context.Background(), testDate); err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertEmptyDir(t, cfg.Paths.StagingDir)

	cfg.Synthesis.MaxFailures = 0
	pipe = newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5, fail: map[int]bool{0: true}}, &fakeAssembler{}, nil)
	if _, err := pipe.Run(context.Background(), testDate); err == nil {
		t.Fatal("expected failure-threshold error")
	}
	assertEmptyDir(t, cfg.Paths.StagingDir)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir not cleaned, %d entries remain", len(entries))
	}
}

func TestRunSkipsFailedChunkWithinThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.Synthesis.MaxFailures = 1
	writeScript(t, cfg, testScript)
	ledger := openLedger(t, cfg)

	// Chunk 1 is Maya's cold-open line; its failure shortens the first
	// section but must not shift what follows out of order.
	synth := &fakeSynth{perChunkSeconds: 5, fail: map[int]bool{1: true}}
	pipe := newTestPipeline(t, cfg, synth, &fakeAssembler{}, ledger)

	outcome, err := pipe.Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(outcome.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(outcome.Failures))
	}
	// Three surviving 5s clips, gap after all but the last; the skipped
	// chunk contributes neither duration nor a gap.
	want := 15*time.Second + 2*400*time.Millisecond
	if outcome.Timeline.Total != want {
		t.Errorf("timeline total = %v, want %v", outcome.Timeline.Total, want)
	}

	ep, err := ledger.Get(context.Background(), testDate)
	if err != nil {
		t.Fatalf("ledger Get: %v", err)
	}
	if ep.FailureCount != 1 {
		t.Errorf("failure count = %d, want 1", ep.FailureCount)
	}
}

func TestRunBlocksWhenFailuresExceedThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.Synthesis.MaxFailures = 0
	writeScript(t, cfg, testScript)
	ledger := openLedger(t, cfg)

	synth := &fakeSynth{perChunkSeconds: 5, fail: map[int]bool{2: true}}
	pipe := newTestPipeline(t, cfg, synth, &fakeAssembler{}, ledger)

	_, err := pipe.Run(context.Background(), testDate)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	if _, ok := store.BestAudioFile(cfg.Paths.EpisodesDir, testDate); ok {
		t.Error("blocked run must not leave an episode artifact")
	}
	if _, err := ledger.Get(context.Background(), testDate); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ledger Get after blocked run = %v, want ErrNotFound", err)
	}
}

func TestRunWritesRevisedArtifactWhenOriginalExists(t *testing.T) {
	cfg := testConfig(t)
	writeScript(t, cfg, testScript)

	original := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-podcast.mp3")
	if err := os.WriteFile(original, []byte("old render"), 0o644); err != nil {
		t.Fatal(err)
	}

	pipe := newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5}, &fakeAssembler{}, nil)
	outcome, err := pipe.Run(context.Background(), testDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantAudio := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-podcast-v2.mp3")
	if outcome.AudioPath != wantAudio {
		t.Errorf("audio path = %q, want %q", outcome.AudioPath, wantAudio)
	}
	data, err := os.ReadFile(original)
	if err != nil || string(data) != "old render" {
		t.Errorf("original artifact was disturbed: %q, %v", data, err)
	}
	if best, _ := store.BestAudioFile(cfg.Paths.EpisodesDir, testDate); best != wantAudio {
		t.Errorf("BestAudioFile = %q, want the revised render", best)
	}
}

func TestRunMissingScript(t *testing.T) {
	cfg := testConfig(t)

	pipe := newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5}, &fakeAssembler{}, nil)
	_, err := pipe.Run(context.Background(), testDate)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRunRejectsUnknownSpeaker(t *testing.T) {
	cfg := testConfig(t)
	writeScript(t, cfg, "## Intro\n\n**Rogue**: who am I?\n")

	pipe := newTestPipeline(t, cfg, &fakeSynth{perChunkSeconds: 5}, &fakeAssembler{}, nil)
	_, err := pipe.Run(context.Background(), testDate)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	var unknown *script.UnknownSpeakerError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownSpeakerError in chain", err)
	}
}
