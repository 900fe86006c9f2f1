package track

import "strings"

// DownloadStatus represents the per-track outcome lifecycle.
type DownloadStatus string

const (
	StatusPending            DownloadStatus = "pending"
	StatusDownloading        DownloadStatus = "downloading"
	StatusSuccess            DownloadStatus = "success"
	StatusFailed             DownloadStatus = "failed"
	StatusVerified           DownloadStatus = "verified"
	StatusVerificationFailed DownloadStatus = "verification_failed"
)

var allStatuses = []DownloadStatus{
	StatusPending,
	StatusDownloading,
	StatusSuccess,
	StatusFailed,
	StatusVerified,
	StatusVerificationFailed,
}

var statusSet = func() map[DownloadStatus]struct{} {
	set := make(map[DownloadStatus]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// statusTransitions encodes the one-way progression. Success is terminal when
// verification is skipped; otherwise it advances exactly once more.
var statusTransitions = map[DownloadStatus][]DownloadStatus{
	StatusPending:     {StatusDownloading},
	StatusDownloading: {StatusSuccess, StatusFailed},
	StatusSuccess:     {StatusVerified, StatusVerificationFailed},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []DownloadStatus {
	cp := make([]DownloadStatus, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known DownloadStatus.
func ParseStatus(value string) (DownloadStatus, bool) {
	normalized := DownloadStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving to next follows the one-way
// progression. No status is ever revisited within a session.
func (s DownloadStatus) CanTransition(next DownloadStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transition.
func (s DownloadStatus) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusVerified, StatusVerificationFailed:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the status represents a completed download with
// no outstanding doubt.
func (s DownloadStatus) Succeeded() bool {
	return s == StatusSuccess || s == StatusVerified
}
