package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"cratedig/internal/logging"
	"cratedig/internal/services"
	"cratedig/internal/track"
)

// downloadLoop processes every track sequentially, pacing requests with the
// configured inter-download delay. Cancellation stops the loop between
// tracks; statistics cover only the tracks actually processed.
func (c *Coordinator) downloadLoop(ctx context.Context, sessionID string, tracks []track.Track, logger *slog.Logger) (track.SessionStats, []track.Track) {
	var stats track.SessionStats
	var failed []track.Track

	delay := time.Duration(c.cfg.Download.DownloadDelaySeconds * float64(time.Second))
	bar := c.newProgressBar(len(tracks))

	for i, t := range tracks {
		if ctx.Err() != nil {
			logger.Info("session cancelled",
				logging.Int("processed", i),
				logging.Int("remaining", len(tracks)-i),
			)
			break
		}
		if i > 0 && delay > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				break
			}
		}

		result := c.processTrack(ctx, t, logger)
		stats.Total++
		stats.Record(result)
		if result.Status == track.StatusFailed {
			failed = append(failed, t)
		}
		if c.store != nil {
			if err := c.store.RecordTrack(ctx, sessionID, result); err != nil {
				logger.Warn("history track write failed", logging.Error(err))
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return stats, failed
}

// processTrack runs download and verification for one track. A panic in
// either stage is converted into a failed result here so the batch outlives
// any single track.
func (c *Coordinator) processTrack(ctx context.Context, t track.Track, logger *slog.Logger) (result track.DownloadResult) {
	trackCtx := services.WithTrack(ctx, t.DisplayName())
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logging.WithContext(trackCtx, logger), "unexpected track failure", "track_panic",
				logging.Any("panic", r),
				logging.String(logging.FieldErrorHint, "report this; the session continued with the next track"),
			)
			result = track.DownloadResult{
				Track:        t,
				Status:       track.StatusFailed,
				ErrorMessage: fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	result = c.resolver.Resolve(trackCtx, t)
	if c.verifier == nil || !result.NeedsVerification() {
		return result
	}

	outcome := c.verifier.Verify(trackCtx, result.FilePath, t)
	switch {
	case outcome.Skipped:
		// Accepted without evidence: the track stays at plain success.
	case outcome.Accepted:
		result.Status = track.StatusVerified
		result.Match = outcome.Match
	default:
		result.Status = track.StatusVerificationFailed
		result.Match = outcome.Match
		if result.ErrorMessage == "" {
			result.ErrorMessage = outcome.Reason
		}
	}
	return result
}

func (c *Coordinator) newProgressBar(total int) *progressbar.ProgressBar {
	if !c.progress || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
