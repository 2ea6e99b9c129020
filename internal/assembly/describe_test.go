package assembly

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paperweights/internal/episode"
)

const describeDigest = `#### 1. Sparse Attention Revisited
Link: https://arxiv.org/abs/2603.01234

#### 8. A Survey of Retrieval Benchmarks
https://arxiv.org/abs/2603.08888
`

func TestDescriberDerivesMetadataFromScriptAndDigest(t *testing.T) {
	cfg := testConfig(t)
	writeScript(t, cfg, testScript)

	digestPath := filepath.Join(cfg.Paths.DigestDir, testDate+".md")
	if err := os.WriteFile(digestPath, []byte(describeDigest), 0o644); err != nil {
		t.Fatal(err)
	}
	audioPath := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-podcast.mp3")
	if err := os.WriteFile(audioPath, []byte("not real audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	title, description := Describer(cfg)(testDate, audioPath)

	if title != "Sparse Attention Revisited" {
		t.Errorf("title = %q, want the lead deep-dive topic", title)
	}
	if description == "" {
		t.Fatal("expected a non-empty description")
	}
	if !strings.Contains(description, "https://arxiv.org/abs/2603.01234") {
		t.Errorf("description missing the digest link:\n%s", description)
	}
}

func TestDescriberFallsBackWithoutScript(t *testing.T) {
	cfg := testConfig(t)
	audioPath := filepath.Join(cfg.Paths.EpisodesDir, testDate+"-podcast.mp3")
	if err := os.WriteFile(audioPath, []byte("not real audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	title, description := Describer(cfg)(testDate, audioPath)

	if title != episode.GenericTitle {
		t.Errorf("title = %q, want the generic fallback", title)
	}
	if description == "" {
		t.Error("expected a non-empty description even without sources")
	}
}
