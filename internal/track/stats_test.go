package track

import (
	"math"
	"testing"
	"time"
)

func TestSessionStatsRecord(t *testing.T) {
	results := []DownloadResult{
		{Status: StatusSuccess},
		{Status: StatusVerified},
		{Status: StatusVerificationFailed},
		{Status: StatusFailed},
		{Status: StatusFailed},
	}

	stats := SessionStats{Total: len(results)}
	for _, result := range results {
		stats.Record(result)
	}

	if stats.Successful != 3 {
		t.Errorf("Successful = %d, want 3", stats.Successful)
	}
	if stats.Failed != 2 {
		t.Errorf("Failed = %d, want 2", stats.Failed)
	}
	if stats.Verified != 1 {
		t.Errorf("Verified = %d, want 1", stats.Verified)
	}
	if stats.VerificationFailures != 1 {
		t.Errorf("VerificationFailures = %d, want 1", stats.VerificationFailures)
	}
	if stats.Successful+stats.Failed != stats.Total {
		t.Errorf("Successful+Failed = %d, want Total = %d", stats.Successful+stats.Failed, stats.Total)
	}
}

func TestSessionStatsRecordCountsUnterminatedAsFailed(t *testing.T) {
	stats := SessionStats{Total: 1}
	stats.Record(DownloadResult{Status: StatusPending})
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
}

func TestSessionStatsRates(t *testing.T) {
	stats := SessionStats{
		Total:      4,
		Successful: 3,
		Failed:     1,
		Verified:   2,
		Elapsed:    8 * time.Second,
	}

	if got := stats.SuccessRate(); math.Abs(got-75) > 1e-9 {
		t.Errorf("SuccessRate() = %v, want 75", got)
	}
	if got := stats.VerificationRate(); math.Abs(got-2.0/3.0*100) > 1e-9 {
		t.Errorf("VerificationRate() = %v", got)
	}
	if got := stats.AverageTrackTime(); got != 2*time.Second {
		t.Errorf("AverageTrackTime() = %v, want 2s", got)
	}

	var empty SessionStats
	if empty.SuccessRate() != 0 || empty.VerificationRate() != 0 || empty.AverageTrackTime() != 0 {
		t.Error("zero stats should derive zero rates")
	}
}
