package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.EpisodesDir == "" {
		return errors.New("paths.episodes_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if len(c.Synthesis.Hosts) != 2 {
		return fmt.Errorf("synthesis.hosts must define exactly two speakers, found %d", len(c.Synthesis.Hosts))
	}
	for speaker, voice := range c.Synthesis.Hosts {
		if strings.TrimSpace(speaker) == "" {
			return errors.New("synthesis.hosts contains an empty speaker name")
		}
		if strings.TrimSpace(voice) == "" {
			return fmt.Errorf("synthesis.hosts[%s] has an empty voice id", speaker)
		}
	}
	if c.Synthesis.MaxChunkChars < 100 {
		return errors.New("synthesis.max_chunk_chars must be at least 100")
	}
	if c.Synthesis.MaxRetries < 0 {
		return errors.New("synthesis.max_retries must not be negative")
	}
	if c.Synthesis.MaxFailures < 0 {
		return errors.New("synthesis.max_failures must not be negative")
	}
	if c.Synthesis.TimeoutSeconds <= 0 {
		return errors.New("synthesis.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if c.Assembly.SilenceGapMs < 0 {
		return errors.New("assembly.silence_gap_ms must not be negative")
	}
	if c.Assembly.DriftToleranceMs <= 0 {
		return errors.New("assembly.drift_tolerance_ms must be positive")
	}
	return nil
}

func (c *Config) validatePublish() error {
	repo := strings.TrimSpace(c.Publish.Repo)
	if repo == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/paperweights/config.toml"
		}
		return fmt.Errorf("publish.repo is required. Set PAPERWEIGHTS_REPO env var or edit %s (create with 'paperweights config init')", defaultPath)
	}
	if strings.Count(repo, "/") != 1 {
		return fmt.Errorf("publish.repo must be in owner/name form, got %q", repo)
	}
	if strings.TrimSpace(c.Publish.AssetsTag) == "" {
		return errors.New("publish.assets_tag must be set")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if strings.TrimSpace(c.Feed.Title) == "" {
		return errors.New("feed.title must be set")
	}
	if c.Feed.MaxListedPapers <= 0 {
		return errors.New("feed.max_listed_papers must be positive")
	}
	if _, err := time.Parse("15:04:05 -0700", c.Feed.PublishTime); err != nil {
		return fmt.Errorf("feed.publish_time must look like %q: %w", defaultFeedPublishTime, err)
	}
	return nil
}
