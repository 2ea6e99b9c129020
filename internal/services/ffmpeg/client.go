package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Client defines the audio rendering operations used during assembly.
type Client interface {
	GenerateSilence(ctx context.Context, outputPath string, duration time.Duration) error
	Concat(ctx context.Context, listPath, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// GenerateSilence renders duration of mono silence at 44.1kHz into outputPath.
func (c *CLI) GenerateSilence(ctx context.Context, outputPath string, duration time.Duration) error {
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	if duration <= 0 {
		return errors.New("duration must be positive")
	}

	args := []string{
		"-y", "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono",
		"-t", fmt.Sprintf("%.3f", duration.Seconds()),
		"-q:a", "9", outputPath,
	}
	return c.run(ctx, "generate silence", args)
}

// Concat joins the files named in the concat list into outputPath using
// stream copy, so clips are never re-encoded.
func (c *CLI) Concat(ctx context.Context, listPath, outputPath string) error {
	if strings.TrimSpace(listPath) == "" {
		return errors.New("concat list path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-y", "-f", "concat", "-safe", "0",
		"-i", listPath, "-c", "copy", outputPath,
	}
	return c.run(ctx, "concat", args)
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s failed: %w: %s", operation, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// WriteConcatList writes an ffmpeg concat-demuxer file list. Single quotes
// in paths are escaped per the demuxer's quoting rules.
func WriteConcatList(path string, entries []string) error {
	if len(entries) == 0 {
		return errors.New("concat list requires at least one entry")
	}
	var sb strings.Builder
	for _, entry := range entries {
		escaped := strings.ReplaceAll(entry, "'", `'\''`)
		fmt.Fprintf(&sb, "file '%s'\n", escaped)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create concat list dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
