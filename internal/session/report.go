package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"cratedig/internal/fileutil"
	"cratedig/internal/logging"
	"cratedig/internal/track"
)

// lowSuccessRateThreshold is the percentage below which the report adds
// troubleshooting advice. Advisory only; it never changes control flow.
const lowSuccessRateThreshold = 70.0

type summary struct {
	SessionID    string
	Playlists    []track.PlaylistInfo
	Stats        track.SessionStats
	FailedTracks []track.Track
	OutputDir    string
}

// report runs the REPORT stage: recovery file, history counters, the
// rendered summary, and the completion notification.
func (c *Coordinator) report(ctx context.Context, s summary, logger *slog.Logger) {
	failedListPath := filepath.Join(s.OutputDir, FailedListName)
	if err := WriteFailedList(failedListPath, s.FailedTracks); err != nil {
		logging.WarnWithContext(logger, "failed-downloads list write failed", "failed_list_write_failed",
			logging.String("path", failedListPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "unresolved tracks are only recorded in logs and history"),
		)
	}

	if c.store != nil {
		if err := c.store.FinishSession(ctx, s.SessionID, time.Now(), s.Stats); err != nil {
			logger.Warn("history session finish failed", logging.Error(err))
		}
	}

	c.renderSummary(s)

	logger.Info("session complete",
		logging.Int("total", s.Stats.Total),
		logging.Int("successful", s.Stats.Successful),
		logging.Int("failed", s.Stats.Failed),
		logging.Int("verified", s.Stats.Verified),
		logging.Int("verification_failures", s.Stats.VerificationFailures),
		logging.Duration("elapsed", s.Stats.Elapsed),
	)
	if s.Stats.Total > 0 && s.Stats.SuccessRate() < lowSuccessRateThreshold {
		logging.WarnWithContext(logger, "low session success rate", "low_success_rate",
			logging.Float64("success_rate", s.Stats.SuccessRate()),
			logging.String(logging.FieldErrorHint, "some tracks may simply be absent from the index; for network failures, raise download_delay_seconds and retry from failed_downloads.txt"),
			logging.String(logging.FieldImpact, "a large share of the batch is unresolved"),
		)
	}

	if err := c.notifier.NotifySessionComplete(ctx, s.Stats); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
}

func (c *Coordinator) renderSummary(s summary) {
	stats := s.Stats

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Session Summary")
	tw.AppendRow(table.Row{"Playlists", len(s.Playlists)})
	tw.AppendRow(table.Row{"Total tracks", stats.Total})
	tw.AppendRow(table.Row{"Successful", stats.Successful})
	tw.AppendRow(table.Row{"Failed", stats.Failed})
	tw.AppendRow(table.Row{"Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate())})
	if stats.Verified > 0 || stats.VerificationFailures > 0 {
		tw.AppendRow(table.Row{"Verified", stats.Verified})
		tw.AppendRow(table.Row{"Verification failures", stats.VerificationFailures})
		tw.AppendRow(table.Row{"Verification rate", fmt.Sprintf("%.1f%%", stats.VerificationRate())})
	}
	tw.AppendRow(table.Row{"Elapsed", stats.Elapsed.Round(time.Second).String()})
	if stats.Total > 0 {
		tw.AppendRow(table.Row{"Average per track", stats.AverageTrackTime().Round(time.Second).String()})
	}
	if size := fileutil.DirSize(s.OutputDir); size > 0 {
		tw.AppendRow(table.Row{"Library size", humanize.Bytes(uint64(size))})
	}
	tw.AppendRow(table.Row{"Session", s.SessionID})
	fmt.Fprintln(c.reportWriter, tw.Render())

	if len(s.FailedTracks) > 0 {
		fmt.Fprintf(c.reportWriter, "%d tracks could not be resolved; see %s for manual retry.\n",
			len(s.FailedTracks), filepath.Join(s.OutputDir, FailedListName))
	}
}
