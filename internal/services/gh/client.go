package gh

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// ReleaseStore defines the remote release operations the publisher needs.
type ReleaseStore interface {
	ReleaseExists(ctx context.Context, tag string) (bool, error)
	DeleteRelease(ctx context.Context, tag string) error
	CreateRelease(ctx context.Context, tag, title, notes string, assetPaths ...string) error
	UploadAsset(ctx context.Context, tag, assetPath string) error
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

// CLI wraps the gh command-line tool for a single repository.
type CLI struct {
	binary string
	repo   string
}

// NewCLI constructs a CLI client targeting repo ("owner/name").
func NewCLI(repo string, opts ...Option) *CLI {
	cli := &CLI{binary: "gh", repo: repo}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// ReleaseExists reports whether a release with the given tag is present.
func (c *CLI) ReleaseExists(ctx context.Context, tag string) (bool, error) {
	if err := c.validate(tag); err != nil {
		return false, err
	}
	cmd := commandContext(ctx, c.binary, "release", "view", tag, "--repo", c.repo) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err == nil {
		return true, nil
	}
	if strings.Contains(strings.ToLower(string(output)), "release not found") {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// gh exits 1 for missing releases across versions, with varying
		// message text.
		return false, nil
	}
	return false, fmt.Errorf("gh release view failed: %w: %s", err, strings.TrimSpace(string(output)))
}

// DeleteRelease removes the release and its tag.
func (c *CLI) DeleteRelease(ctx context.Context, tag string) error {
	if err := c.validate(tag); err != nil {
		return err
	}
	cmd := commandContext(ctx, c.binary, "release", "delete", tag, "--repo", c.repo, "--yes", "--cleanup-tag") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gh release delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// CreateRelease creates a release with the given tag and attaches assetPaths.
func (c *CLI) CreateRelease(ctx context.Context, tag, title, notes string, assetPaths ...string) error {
	if err := c.validate(tag); err != nil {
		return err
	}
	args := []string{"release", "create", tag, "--repo", c.repo, "--title", title, "--notes", notes}
	args = append(args, assetPaths...)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gh release create failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// UploadAsset attaches assetPath to an existing release, replacing any asset
// with the same name.
func (c *CLI) UploadAsset(ctx context.Context, tag, assetPath string) error {
	if err := c.validate(tag); err != nil {
		return err
	}
	if strings.TrimSpace(assetPath) == "" {
		return errors.New("asset path required")
	}
	cmd := commandContext(ctx, c.binary, "release", "upload", tag, assetPath, "--repo", c.repo, "--clobber") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gh release upload failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (c *CLI) validate(tag string) error {
	if strings.TrimSpace(c.repo) == "" {
		return errors.New("repository required")
	}
	if strings.TrimSpace(tag) == "" {
		return errors.New("tag required")
	}
	return nil
}

var _ ReleaseStore = (*CLI)(nil)
