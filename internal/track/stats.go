package track

import "time"

// SessionStats aggregates outcomes across one session. Counters only ever
// increment; rates are recomputed on read. After a complete run
// Successful+Failed == Total, with verification outcomes counted inside
// Successful because the download itself completed.
type SessionStats struct {
	Total                int
	Successful           int
	Failed               int
	Verified             int
	VerificationFailures int
	Elapsed              time.Duration
}

// Record tallies one terminal result. Any non-success status, including a
// result synthesized from an unexpected per-track error, counts as failed.
func (s *SessionStats) Record(result DownloadResult) {
	switch result.Status {
	case StatusSuccess:
		s.Successful++
	case StatusVerified:
		s.Successful++
		s.Verified++
	case StatusVerificationFailed:
		s.Successful++
		s.VerificationFailures++
	default:
		s.Failed++
	}
}

// SuccessRate returns the percentage of tracks whose download completed.
func (s SessionStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}

// VerificationRate returns the percentage of successful downloads that
// passed fingerprint verification.
func (s SessionStats) VerificationRate() float64 {
	if s.Successful == 0 {
		return 0
	}
	return float64(s.Verified) / float64(s.Successful) * 100
}

// AverageTrackTime returns the mean wall-clock time spent per track.
func (s SessionStats) AverageTrackTime() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Total)
}
