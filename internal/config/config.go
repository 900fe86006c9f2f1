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

// Spotify contains credentials and market settings for the Spotify Web API.
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Market       string `toml:"market"`
}

// AcoustID contains configuration for the AcoustID fingerprint lookup API.
type AcoustID struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Search contains candidate search and filtering settings.
type Search struct {
	MaxResults         int      `toml:"max_results"`
	MinDurationSeconds int      `toml:"min_duration_seconds"`
	MaxDurationSeconds int      `toml:"max_duration_seconds"`
	RejectKeywords     []string `toml:"reject_keywords"`
}

// Download contains audio download settings and pacing delays.
type Download struct {
	OutputDir            string  `toml:"output_dir"`
	AudioFormat          string  `toml:"audio_format"`
	AudioQuality         string  `toml:"audio_quality"`
	DownloadDelaySeconds float64 `toml:"download_delay_seconds"`
	PlaylistDelaySeconds float64 `toml:"playlist_delay_seconds"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	EmbedTags            bool    `toml:"embed_tags"`
}

// Verification contains acoustic fingerprint verification settings.
type Verification struct {
	Enabled             bool    `toml:"enabled"`
	SampleSeconds       int     `toml:"sample_seconds"`
	SampleRate          int     `toml:"sample_rate"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	TimeoutSeconds      int     `toml:"timeout_seconds"`
}

// Paths contains input file and directory configuration.
type Paths struct {
	SourcesFile string `toml:"sources_file"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
}

// Notifications contains configuration for ntfy push notifications.
// NtfyTopic is the full endpoint URL, for example https://ntfy.sh/my-topic.
type Notifications struct {
	NtfyTopic       string `toml:"ntfy_topic"`
	RequestTimeout  int    `toml:"request_timeout"`
	SessionComplete bool   `toml:"session_complete"`
	Errors          bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Tools contains external binary name overrides. Empty values fall back to
// the conventional names resolved through PATH.
type Tools struct {
	YtDlp   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Fpcalc  string `toml:"fpcalc"`
}

// Config encapsulates all configuration values for cratedig.
//
// Configuration sections by subsystem:
//   - Spotify: Web API credentials and market for playlist extraction
//   - AcoustID: fingerprint lookup API key and endpoint
//   - Search: candidate count, duration bounds, and reject keywords
//   - Download: output directory, audio format/quality, pacing, timeouts
//   - Verification: fingerprint verification toggles and thresholds
//   - Paths: sources file, log directory, and state directory
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
//   - Tools: external binary name overrides
type Config struct {
	Spotify       Spotify       `toml:"spotify"`
	AcoustID      AcoustID      `toml:"acoustid"`
	Search        Search        `toml:"search"`
	Download      Download      `toml:"download"`
	Verification  Verification  `toml:"verification"`
	Paths         Paths         `toml:"paths"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Tools         Tools         `toml:"tools"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cratedig/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	defaultPath, err := expandPath("~/.config/cratedig/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cratedig.toml")
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

// EnsureDirectories creates the directories a session needs before any track
// is processed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Download.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// YtdlpBinary returns the yt-dlp executable name.
func (c *Config) YtdlpBinary() string {
	return c.Tools.YtDlp
}

// FFmpegBinary returns the ffmpeg executable name used for sample extraction.
func (c *Config) FFmpegBinary() string {
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return c.Tools.FFprobe
}

// FpcalcBinary returns the Chromaprint fpcalc executable name.
func (c *Config) FpcalcBinary() string {
	return c.Tools.Fpcalc
}

// SpotifyCredentialsPresent reports whether both Spotify credential values are set.
func (c *Config) SpotifyCredentialsPresent() bool {
	return strings.TrimSpace(c.Spotify.ClientID) != "" && strings.TrimSpace(c.Spotify.ClientSecret) != ""
}

// MissingCredentials lists the credential settings that are required but absent.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if strings.TrimSpace(c.Spotify.ClientID) == "" {
		missing = append(missing, "spotify.client_id (or CRATEDIG_SPOTIFY_CLIENT_ID)")
	}
	if strings.TrimSpace(c.Spotify.ClientSecret) == "" {
		missing = append(missing, "spotify.client_secret (or CRATEDIG_SPOTIFY_CLIENT_SECRET)")
	}
	return missing
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
