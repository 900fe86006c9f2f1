package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cratedig/internal/track"
)

// Session is one stored pipeline run. FinishedAt stays zero for runs that
// never reached the summary step.
type Session struct {
	ID                   string
	StartedAt            time.Time
	FinishedAt           time.Time
	PlaylistCount        int
	TotalTracks          int
	Successful           int
	Failed               int
	Verified             int
	VerificationFailures int
}

// Finished reports whether the run recorded its final counters.
func (s Session) Finished() bool {
	return !s.FinishedAt.IsZero()
}

// Duration returns the recorded wall-clock span of a finished run.
func (s Session) Duration() time.Duration {
	if !s.Finished() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// SuccessRate returns the percentage of tracks that downloaded.
func (s Session) SuccessRate() float64 {
	if s.TotalTracks == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.TotalTracks) * 100
}

// TrackRecord is one stored per-track outcome.
type TrackRecord struct {
	ID           int64
	SessionID    string
	Artist       string
	Title        string
	Playlist     string
	Status       track.DownloadStatus
	ErrorMessage string
	FilePath     string
	SourceURL    string
	Elapsed      time.Duration
}

// DisplayName returns the "Artist - Title" form used in history output.
func (r TrackRecord) DisplayName() string {
	return r.Artist + " - " + r.Title
}

// ErrSessionNotFound indicates no stored session matches the requested ID.
var ErrSessionNotFound = errors.New("session not found")

const sessionColumns = "id, started_at, finished_at, playlist_count, total_tracks, successful, failed, verified, verification_failures"

const trackColumns = "id, session_id, artist, title, playlist, status, error_message, file_path, source_url, elapsed_ms"

// StartSession records the beginning of a run.
func (s *Store) StartSession(ctx context.Context, id string, startedAt time.Time, playlistCount, totalTracks int) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("session id is required")
	}
	err := s.execWithoutResultRetry(ctx,
		`INSERT INTO sessions (id, started_at, playlist_count, total_tracks) VALUES (?, ?, ?, ?)`,
		id,
		startedAt.UTC().Format(time.RFC3339Nano),
		playlistCount,
		totalTracks,
	)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// RecordTrack appends one terminal result to a session.
func (s *Store) RecordTrack(ctx context.Context, sessionID string, result track.DownloadResult) error {
	err := s.execWithoutResultRetry(ctx,
		`INSERT INTO session_tracks (session_id, artist, title, playlist, status, error_message, file_path, source_url, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		result.Track.Artist,
		result.Track.Title,
		result.Track.SourcePlaylist,
		string(result.Status),
		result.ErrorMessage,
		result.FilePath,
		result.SourceURL,
		result.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record track: %w", err)
	}
	return nil
}

// FinishSession stores the aggregate counters once the run completes.
func (s *Store) FinishSession(ctx context.Context, id string, finishedAt time.Time, stats track.SessionStats) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE sessions SET finished_at = ?, total_tracks = ?, successful = ?, failed = ?, verified = ?, verification_failures = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano),
		stats.Total,
		stats.Successful,
		stats.Failed,
		stats.Verified,
		stats.VerificationFailures,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// FindSession resolves a full session ID or a unique prefix of one.
func (s *Store) FindSession(ctx context.Context, idOrPrefix string) (*Session, error) {
	ctx = ensureContext(ctx)
	needle := strings.TrimSpace(idOrPrefix)
	if needle == "" {
		return nil, fmt.Errorf("find session: %w", ErrSessionNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, needle)
	session, err := scanSession(row)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id LIKE ? || '%' ORDER BY started_at DESC`, needle)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	defer rows.Close()

	var matches []*Session
	for rows.Next() {
		match, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("find session %s: %w", needle, ErrSessionNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("session prefix %q is ambiguous (%d matches)", needle, len(matches))
	}
}

// SessionTracks returns the per-track outcomes for a session in the order
// they were recorded.
func (s *Store) SessionTracks(ctx context.Context, sessionID string) ([]TrackRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM session_tracks WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session tracks: %w", err)
	}
	defer rows.Close()

	var records []TrackRecord
	for rows.Next() {
		record, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Clear deletes sessions started before cutoff and returns how many were
// removed. Track rows go with their session via the cascade.
func (s *Store) Clear(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM sessions WHERE started_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return affected, nil
}
