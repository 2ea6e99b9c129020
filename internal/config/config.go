package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	EpisodesDir string `toml:"episodes_dir"`
	DigestDir   string `toml:"digest_dir"`
	StagingDir  string `toml:"staging_dir"`
	LogDir      string `toml:"log_dir"`
}

// Synthesis contains speech synthesis settings, including the fixed two-host
// voice roster.
type Synthesis struct {
	// Hosts maps speaker names to synthesis voice identifiers. Exactly two
	// entries are required; speaker labels outside this roster are rejected
	// by the script parser.
	Hosts          map[string]string `toml:"hosts"`
	ModelID        string            `toml:"model_id"`
	MaxChunkChars  int               `toml:"max_chunk_chars"`
	MaxRetries     int               `toml:"max_retries"`
	MaxFailures    int               `toml:"max_failures"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	SagBinary      string            `toml:"sag_binary"`
}

// Assembly contains track assembly settings.
type Assembly struct {
	SilenceGapMs     int    `toml:"silence_gap_ms"`
	DriftToleranceMs int    `toml:"drift_tolerance_ms"`
	FFmpegBinary     string `toml:"ffmpeg_binary"`
	FFprobeBinary    string `toml:"ffprobe_binary"`
}

// Publish contains release hosting settings.
type Publish struct {
	Repo          string `toml:"repo"`
	AssetsTag     string `toml:"assets_tag"`
	CoverArtPath  string `toml:"cover_art_path"`
	FeedAssetName string `toml:"feed_asset_name"`
	GhBinary      string `toml:"gh_binary"`
}

// Feed contains syndication feed channel metadata.
type Feed struct {
	Title           string `toml:"title"`
	Description     string `toml:"description"`
	Author          string `toml:"author"`
	Email           string `toml:"email"`
	Category        string `toml:"category"`
	Language        string `toml:"language"`
	Explicit        string `toml:"explicit"`
	Link            string `toml:"link"`
	PublishTime     string `toml:"publish_time"`
	MaxListedPapers int    `toml:"max_listed_papers"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Publishes      bool   `toml:"publishes"`
	Errors         bool   `toml:"errors"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for paperweights.
//
// Configuration sections by subsystem:
//   - Paths: episode, digest, staging, and log directories
//   - Synthesis: voice roster, chunk limits, retry and failure policy
//   - Assembly: silence gap and duration drift tolerance
//   - Publish: release repository, assets tag, cover art
//   - Feed: syndication channel metadata
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Synthesis     Synthesis     `toml:"synthesis"`
	Assembly      Assembly      `toml:"assembly"`
	Publish       Publish       `toml:"publish"`
	Feed          Feed          `toml:"feed"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/paperweights/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("paperweights.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.EpisodesDir,
		&c.Paths.DigestDir,
		&c.Paths.StagingDir,
		&c.Paths.LogDir,
		&c.Publish.CoverArtPath,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if topic := strings.TrimSpace(os.Getenv("PAPERWEIGHTS_NTFY_TOPIC")); topic != "" {
		c.Notifications.NtfyTopic = topic
	}
	if repo := strings.TrimSpace(os.Getenv("PAPERWEIGHTS_REPO")); repo != "" {
		c.Publish.Repo = repo
	}
	return nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.EpisodesDir, c.Paths.StagingDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SagBinary returns the speech synthesis binary, defaulting to "sag".
func (c *Config) SagBinary() string {
	if b := strings.TrimSpace(c.Synthesis.SagBinary); b != "" {
		return b
	}
	return "sag"
}

// FFmpegBinary returns the ffmpeg binary, defaulting to "ffmpeg".
func (c *Config) FFmpegBinary() string {
	if b := strings.TrimSpace(c.Assembly.FFmpegBinary); b != "" {
		return b
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe binary, defaulting to "ffprobe".
func (c *Config) FFprobeBinary() string {
	if b := strings.TrimSpace(c.Assembly.FFprobeBinary); b != "" {
		return b
	}
	return "ffprobe"
}

// GhBinary returns the release hosting CLI binary, defaulting to "gh".
func (c *Config) GhBinary() string {
	if b := strings.TrimSpace(c.Publish.GhBinary); b != "" {
		return b
	}
	return "gh"
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			return home, nil
		}
		return filepath.Join(home, pathValue[2:]), nil
	}
	return filepath.Abs(pathValue)
}

// ExpandPath expands ~ and relative segments in a user-provided path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
