package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Spotify credentials are
// deliberately not checked here: commands that never touch the Spotify API
// (deps, history, config) must keep working without them, so the session
// startup performs that check itself.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateVerification(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MaxResults < 1 {
		return errors.New("search.max_results must be >= 1")
	}
	if c.Search.MinDurationSeconds <= 0 {
		return errors.New("search.min_duration_seconds must be positive")
	}
	if c.Search.MaxDurationSeconds <= c.Search.MinDurationSeconds {
		return errors.New("search.max_duration_seconds must be greater than search.min_duration_seconds")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if strings.TrimSpace(c.Download.OutputDir) == "" {
		return errors.New("download.output_dir must be set")
	}
	if c.Download.AudioFormat == "" {
		return errors.New("download.audio_format must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"download.timeout_seconds": c.Download.TimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVerification() error {
	if !c.Verification.Enabled {
		return nil
	}
	if c.Verification.SampleSeconds <= 0 {
		return errors.New("verification.sample_seconds must be positive")
	}
	if c.Verification.SampleRate <= 0 {
		return errors.New("verification.sample_rate must be positive")
	}
	if c.Verification.ConfidenceThreshold <= 0 || c.Verification.ConfidenceThreshold > 1 {
		return errors.New("verification.confidence_threshold must be between 0 and 1")
	}
	if c.Verification.SimilarityThreshold <= 0 || c.Verification.SimilarityThreshold > 1 {
		return errors.New("verification.similarity_threshold must be between 0 and 1")
	}
	if c.Verification.TimeoutSeconds <= 0 {
		return errors.New("verification.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	if !strings.HasPrefix(c.Notifications.NtfyTopic, "http://") && !strings.HasPrefix(c.Notifications.NtfyTopic, "https://") {
		return errors.New("notifications.ntfy_topic must be a full URL such as https://ntfy.sh/your-topic")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
