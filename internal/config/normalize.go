package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeSpotify()
	c.normalizeAcoustID()
	c.normalizeSearch()
	if err := c.normalizeDownload(); err != nil {
		return err
	}
	c.normalizeVerification()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeTools()
	return nil
}

// Environment variables override file values so credentials can stay out of
// config files checked into dotfile repositories.
func (c *Config) normalizeSpotify() {
	if value, ok := os.LookupEnv("CRATEDIG_SPOTIFY_CLIENT_ID"); ok && strings.TrimSpace(value) != "" {
		c.Spotify.ClientID = value
	}
	if value, ok := os.LookupEnv("CRATEDIG_SPOTIFY_CLIENT_SECRET"); ok && strings.TrimSpace(value) != "" {
		c.Spotify.ClientSecret = value
	}
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	c.Spotify.Market = strings.ToUpper(strings.TrimSpace(c.Spotify.Market))
	if c.Spotify.Market == "" {
		c.Spotify.Market = defaultMarket
	}
}

func (c *Config) normalizeAcoustID() {
	if value, ok := os.LookupEnv("CRATEDIG_ACOUSTID_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.AcoustID.APIKey = value
	}
	c.AcoustID.APIKey = strings.TrimSpace(c.AcoustID.APIKey)
	c.AcoustID.BaseURL = strings.TrimSpace(c.AcoustID.BaseURL)
	if c.AcoustID.BaseURL == "" {
		c.AcoustID.BaseURL = defaultAcoustIDBaseURL
	}
}

func (c *Config) normalizeSearch() {
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultMaxSearchResults
	}
	if c.Search.MinDurationSeconds <= 0 {
		c.Search.MinDurationSeconds = defaultMinDurationSeconds
	}
	if c.Search.MaxDurationSeconds <= 0 {
		c.Search.MaxDurationSeconds = defaultMaxDurationSeconds
	}
	keywords := make([]string, 0, len(c.Search.RejectKeywords))
	seen := make(map[string]struct{}, len(c.Search.RejectKeywords))
	for _, keyword := range c.Search.RejectKeywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	c.Search.RejectKeywords = keywords
}

func (c *Config) normalizeDownload() error {
	var err error
	if strings.TrimSpace(c.Download.OutputDir) == "" {
		c.Download.OutputDir = defaultOutputDir
	}
	if c.Download.OutputDir, err = expandPath(c.Download.OutputDir); err != nil {
		return fmt.Errorf("download.output_dir: %w", err)
	}
	c.Download.AudioFormat = strings.ToLower(strings.TrimSpace(c.Download.AudioFormat))
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = defaultAudioFormat
	}
	c.Download.AudioQuality = strings.ToUpper(strings.TrimSpace(c.Download.AudioQuality))
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
	if c.Download.DownloadDelaySeconds < 0 {
		c.Download.DownloadDelaySeconds = 0
	}
	if c.Download.PlaylistDelaySeconds < 0 {
		c.Download.PlaylistDelaySeconds = 0
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = defaultDownloadTimeoutSecs
	}
	return nil
}

func (c *Config) normalizeVerification() {
	if c.Verification.SampleSeconds <= 0 {
		c.Verification.SampleSeconds = defaultSampleSeconds
	}
	if c.Verification.SampleRate <= 0 {
		c.Verification.SampleRate = defaultSampleRate
	}
	if c.Verification.ConfidenceThreshold <= 0 {
		c.Verification.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.Verification.SimilarityThreshold <= 0 {
		c.Verification.SimilarityThreshold = defaultSimilarityThreshold
	}
	if c.Verification.TimeoutSeconds <= 0 {
		c.Verification.TimeoutSeconds = defaultVerifyTimeoutSecs
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SourcesFile) == "" {
		c.Paths.SourcesFile = defaultSourcesFile
	}
	if c.Paths.SourcesFile, err = expandPath(c.Paths.SourcesFile); err != nil {
		return fmt.Errorf("paths.sources_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		c.Tools.YtDlp = defaultYtdlpBinary
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Tools.Fpcalc) == "" {
		c.Tools.Fpcalc = defaultFpcalcBinary
	}
}
