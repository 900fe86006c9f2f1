package config

const (
	defaultMarket               = "US"
	defaultAcoustIDBaseURL      = "https://api.acoustid.org/v2/lookup"
	defaultMaxSearchResults     = 5
	defaultMinDurationSeconds   = 30
	defaultMaxDurationSeconds   = 600
	defaultOutputDir            = "downloads"
	defaultAudioFormat          = "mp3"
	defaultAudioQuality         = "320K"
	defaultDownloadDelaySeconds = 2.0
	defaultPlaylistDelaySeconds = 0.5
	defaultDownloadTimeoutSecs  = 300
	defaultSampleSeconds        = 30
	defaultSampleRate           = 11025
	defaultConfidenceThreshold  = 0.7
	defaultSimilarityThreshold  = 0.7
	defaultVerifyTimeoutSecs    = 120
	defaultSourcesFile          = "playlists.txt"
	defaultLogDir               = "logs"
	defaultStateDir             = "~/.local/share/cratedig"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
	defaultNotifyRequestTimeout = 10
	defaultYtdlpBinary          = "yt-dlp"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultFpcalcBinary         = "fpcalc"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Spotify: Spotify{
			Market: defaultMarket,
		},
		AcoustID: AcoustID{
			BaseURL: defaultAcoustIDBaseURL,
		},
		Search: Search{
			MaxResults:         defaultMaxSearchResults,
			MinDurationSeconds: defaultMinDurationSeconds,
			MaxDurationSeconds: defaultMaxDurationSeconds,
		},
		Download: Download{
			OutputDir:            defaultOutputDir,
			AudioFormat:          defaultAudioFormat,
			AudioQuality:         defaultAudioQuality,
			DownloadDelaySeconds: defaultDownloadDelaySeconds,
			PlaylistDelaySeconds: defaultPlaylistDelaySeconds,
			TimeoutSeconds:       defaultDownloadTimeoutSecs,
			EmbedTags:            true,
		},
		Verification: Verification{
			Enabled:             true,
			SampleSeconds:       defaultSampleSeconds,
			SampleRate:          defaultSampleRate,
			ConfidenceThreshold: defaultConfidenceThreshold,
			SimilarityThreshold: defaultSimilarityThreshold,
			TimeoutSeconds:      defaultVerifyTimeoutSecs,
		},
		Paths: Paths{
			SourcesFile: defaultSourcesFile,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		Notifications: Notifications{
			RequestTimeout:  defaultNotifyRequestTimeout,
			SessionComplete: true,
			Errors:          true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Tools: Tools{
			YtDlp:   defaultYtdlpBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Fpcalc:  defaultFpcalcBinary,
		},
	}
}
