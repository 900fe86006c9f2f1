package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"cratedig/internal/config"
	"cratedig/internal/fileutil"
	"cratedig/internal/logging"
	"cratedig/internal/search"
	"cratedig/internal/services/ytdlp"
	"cratedig/internal/track"
)

// Downloader resolves tracks one at a time. It holds no per-session state;
// the session coordinator owns result aggregation.
type Downloader struct {
	searcher   ytdlp.Searcher
	fetcher    ytdlp.Downloader
	selector   *search.Selector
	outputDir  string
	format     string
	maxResults int
	embedTags  bool
	logger     *slog.Logger
}

// New constructs a Downloader with production collaborators derived from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Downloader, error) {
	client, err := ytdlp.New(cfg.YtdlpBinary(), cfg.Download.TimeoutSeconds, cfg.Download.AudioFormat, cfg.Download.AudioQuality)
	if err != nil {
		return nil, fmt.Errorf("build yt-dlp client: %w", err)
	}
	selector := search.NewSelector(cfg.Search, logger)
	return NewWithDependencies(cfg, client, client, selector, logger), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, searcher ytdlp.Searcher, fetcher ytdlp.Downloader, selector *search.Selector, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		searcher:   searcher,
		fetcher:    fetcher,
		selector:   selector,
		outputDir:  cfg.Download.OutputDir,
		format:     cfg.Download.AudioFormat,
		maxResults: cfg.Search.MaxResults,
		embedTags:  cfg.Download.EmbedTags,
		logger:     logging.NewComponentLogger(logger, "downloader"),
	}
}

// Resolve drives the query loop for a single track. Every failure path
// returns a FAILED result with an explanatory message; only exhaustion of
// all queries fails the track, an individual query failing falls through to
// the next one.
func (d *Downloader) Resolve(ctx context.Context, t track.Track) track.DownloadResult {
	start := time.Now()
	logger := logging.WithContext(ctx, d.logger).With(
		logging.String(logging.FieldTrack, t.DisplayName()),
	)
	result := track.DownloadResult{Track: t, Status: track.StatusPending}

	finalPath := filepath.Join(d.outputDir, t.FileName(d.format))
	if fileutil.NonEmptyFile(finalPath) {
		logger.Info("file already present; skipping download", logging.String("path", finalPath))
		result.Status = track.StatusSuccess
		result.FilePath = finalPath
		result.Elapsed = time.Since(start)
		return result
	}

	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		result.Status = track.StatusFailed
		result.ErrorMessage = fmt.Sprintf("create output directory: %v", err)
		result.Elapsed = time.Since(start)
		return result
	}

	result.Status = track.StatusDownloading
	queries := search.Queries(t)
	for i, query := range queries {
		if ctx.Err() != nil {
			break
		}
		attemptLogger := logger.With(
			logging.Int("query_index", i+1),
			logging.Int("query_count", len(queries)),
			logging.String("query", query),
		)

		candidates, err := d.searcher.Search(ctx, query, d.maxResults)
		if err != nil {
			attemptLogger.Warn("search attempt failed", logging.Error(err))
			continue
		}
		selected, ok := d.selector.Select(query, candidates)
		if !ok {
			attemptLogger.Debug("no candidate passed filters", logging.Int("candidates", len(candidates)))
			continue
		}

		if err := d.fetcher.Download(ctx, selected.URL, finalPath); err != nil {
			attemptLogger.Warn("download attempt failed",
				logging.String("url", selected.URL),
				logging.Error(err),
			)
			if cleanupErr := fileutil.RemoveArtifacts(finalPath); cleanupErr != nil {
				attemptLogger.Warn("partial artifact cleanup failed", logging.Error(cleanupErr))
			}
			continue
		}

		result.Status = track.StatusSuccess
		result.FilePath = finalPath
		result.SourceURL = selected.URL
		if d.embedTags {
			if err := writeTags(finalPath, t, selected.URL); err != nil {
				attemptLogger.Warn("tag embedding failed; file kept as downloaded", logging.Error(err))
			}
		}
		result.Elapsed = time.Since(start)
		attemptLogger.Info("track downloaded",
			logging.String("path", finalPath),
			logging.Int64("size_bytes", fileutil.FileSize(finalPath)),
			logging.Duration("elapsed", result.Elapsed),
		)
		return result
	}

	result.Status = track.StatusFailed
	result.Elapsed = time.Since(start)
	if err := ctx.Err(); err != nil {
		result.ErrorMessage = fmt.Sprintf("cancelled: %v", err)
		logger.Info("download cancelled", logging.Error(err))
		return result
	}
	result.ErrorMessage = "No suitable video found"
	logging.WarnWithContext(logger, "all queries exhausted without a download", "download_failed",
		logging.Int("queries_tried", len(queries)),
		logging.String(logging.FieldErrorHint, "the track may be region locked or absent from the index; it is listed in failed_downloads.txt for manual search"),
	)
	return result
}
