package synthesis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"paperweights/internal/script"
	"paperweights/internal/services"
	"paperweights/internal/services/sag"
)

type fakeClient struct {
	calls    int
	failures map[int]int // chunk index -> number of failing attempts
	perChunk map[int]int // chunk index -> attempts observed
}

func newFakeClient(failures map[int]int) *fakeClient {
	return &fakeClient{failures: failures, perChunk: map[int]int{}}
}

func (f *fakeClient) Synthesize(ctx context.Context, req sag.Request) error {
	f.calls++
	var index int
	if _, err := fmt.Sscanf(req.OutputPath[len(req.OutputPath)-8:], "%04d.mp3", &index); err != nil {
		return fmt.Errorf("unexpected output path %q", req.OutputPath)
	}
	f.perChunk[index]++
	if remaining := f.failures[index]; remaining > 0 {
		f.failures[index] = remaining - 1
		return errors.New("synthesizer unavailable")
	}
	// Write a plausible clip: 80000 bytes read back as 5s by the test probe.
	return os.WriteFile(req.OutputPath, make([]byte, 80000), 0o644)
}

func testProbe(string) (float64, error) { return 5.0, nil }

func testChunks(n int) []script.Chunk {
	chunks := make([]script.Chunk, 0, n)
	for i := 0; i < n; i++ {
		speaker := "Alex"
		if i%2 == 1 {
			speaker = "Maya"
		}
		chunks = append(chunks, script.Chunk{Index: i, SectionIndex: 0, Speaker: speaker, Text: "Some dialogue text for rendering."})
	}
	return chunks
}

func testVoices() map[string]string {
	return map[string]string{"Alex": "voice-a", "Maya": "voice-m"}
}

func TestRenderAllChunksSucceed(t *testing.T) {
	client := newFakeClient(nil)
	orch := New(client, Options{Voices: testVoices(), MaxRetries: 2, Probe: testProbe})

	result, err := orch.Render(context.Background(), testChunks(4), t.TempDir())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", result.Failures)
	}
	if len(result.Clips) != 4 {
		t.Fatalf("expected 4 clips, got %d", len(result.Clips))
	}
	for i, clip := range result.Clips {
		if clip.ChunkIndex != i {
			t.Fatalf("clip %d out of order: chunk index %d", i, clip.ChunkIndex)
		}
		if clip.DurationSeconds != 5.0 {
			t.Fatalf("clip %d: unexpected duration %v", i, clip.DurationSeconds)
		}
		if clip.SizeBytes != 80000 {
			t.Fatalf("clip %d: unexpected size %d", i, clip.SizeBytes)
		}
	}
}

func TestRenderRetriesTransientFailure(t *testing.T) {
	client := newFakeClient(map[int]int{1: 2})
	orch := New(client, Options{Voices: testVoices(), MaxRetries: 2, Probe: testProbe})

	result, err := orch.Render(context.Background(), testChunks(3), t.TempDir())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected retry to recover, got failures %+v", result.Failures)
	}
	if got := client.perChunk[1]; got != 3 {
		t.Fatalf("expected 3 attempts for chunk 1, got %d", got)
	}
}

func TestRenderSkipsChunkAfterRetriesExhausted(t *testing.T) {
	client := newFakeClient(map[int]int{2: 10})
	orch := New(client, Options{Voices: testVoices(), MaxRetries: 2, Probe: testProbe})

	result, err := orch.Render(context.Background(), testChunks(5), t.TempDir())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Clips) != 4 {
		t.Fatalf("expected 4 clips, got %d", len(result.Clips))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", result.Failures)
	}
	failure := result.Failures[0]
	if failure.ChunkIndex != 2 {
		t.Fatalf("expected failure for chunk 2, got %d", failure.ChunkIndex)
	}
	if failure.Speaker != "Alex" {
		t.Fatalf("expected speaker Alex, got %q", failure.Speaker)
	}
	if failure.Reason == "" {
		t.Fatal("expected failure reason to be recorded")
	}
	// Remaining clips keep their original chunk ordering.
	wantOrder := []int{0, 1, 3, 4}
	for i, clip := range result.Clips {
		if clip.ChunkIndex != wantOrder[i] {
			t.Fatalf("expected chunk order %v, got clip %d with index %d", wantOrder, i, clip.ChunkIndex)
		}
	}
}

func TestRenderRejectsUnknownSpeakerVoice(t *testing.T) {
	client := newFakeClient(nil)
	orch := New(client, Options{Voices: map[string]string{"Alex": "voice-a"}, Probe: testProbe})

	chunks := []script.Chunk{{Index: 0, Speaker: "Maya", Text: "hello"}}
	_, err := orch.Render(context.Background(), chunks, t.TempDir())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no synthesis calls, got %d", client.calls)
	}
}

func TestRenderRejectsEmptyChunkList(t *testing.T) {
	orch := New(newFakeClient(nil), Options{Voices: testVoices(), Probe: testProbe})
	if _, err := orch.Render(context.Background(), nil, t.TempDir()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderRetriesInvalidClip(t *testing.T) {
	attempts := 0
	probe := func(path string) (float64, error) {
		attempts++
		if attempts == 1 {
			return 0.1, nil // first render too short, forces a retry
		}
		return 5.0, nil
	}
	client := newFakeClient(nil)
	orch := New(client, Options{Voices: testVoices(), MaxRetries: 2, Probe: probe})

	result, err := orch.Render(context.Background(), testChunks(1), t.TempDir())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("expected validation retry to recover, got %+v", result.Failures)
	}
	if client.perChunk[0] != 2 {
		t.Fatalf("expected 2 attempts, got %d", client.perChunk[0])
	}
}

func TestRenderReportsUnreadableClip(t *testing.T) {
	probe := func(string) (float64, error) {
		return 0, errors.New("no MP3 frames found")
	}
	client := newFakeClient(nil)
	orch := New(client, Options{Voices: testVoices(), MaxRetries: 1, Probe: probe})

	result, err := orch.Render(context.Background(), testChunks(1), t.TempDir())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %+v", result.Failures)
	}
	// The reason distinguishes an unreadable artifact from a synthesis
	// command failure.
	if !strings.Contains(result.Failures[0].Reason, "clip unreadable") {
		t.Fatalf("expected unreadable-clip reason, got %q", result.Failures[0].Reason)
	}
}
