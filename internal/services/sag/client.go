package sag

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines text-to-speech synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, req Request) error
}

// Request describes a single synthesis call.
type Request struct {
	Text       string
	VoiceID    string
	OutputPath string
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

// WithModelID overrides the default synthesis model.
func WithModelID(modelID string) Option {
	return func(c *CLI) {
		if modelID != "" {
			c.modelID = modelID
		}
	}
}

// CLI wraps the sag command-line synthesizer.
type CLI struct {
	binary  string
	modelID string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "sag", modelID: "eleven_v3"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize renders req.Text with req.VoiceID into req.OutputPath.
func (c *CLI) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return errors.New("text required")
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		return errors.New("voice id required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{"--model-id", c.modelID, "-v", req.VoiceID, "-o", req.OutputPath, req.Text}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("sag synthesize failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

var _ Client = (*CLI)(nil)
