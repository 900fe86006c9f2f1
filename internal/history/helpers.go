package history

import (
	"database/sql"
	"errors"
	"time"

	"cratedig/internal/track"
)

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id                   string
		startedRaw           string
		finishedRaw          sql.NullString
		playlistCount        int
		totalTracks          int
		successful           int
		failed               int
		verified             int
		verificationFailures int
	)

	if err := scanner.Scan(
		&id,
		&startedRaw,
		&finishedRaw,
		&playlistCount,
		&totalTracks,
		&successful,
		&failed,
		&verified,
		&verificationFailures,
	); err != nil {
		return nil, err
	}

	session := &Session{
		ID:                   id,
		PlaylistCount:        playlistCount,
		TotalTracks:          totalTracks,
		Successful:           successful,
		Failed:               failed,
		Verified:             verified,
		VerificationFailures: verificationFailures,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		session.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			session.FinishedAt = finished
		}
	}
	return session, nil
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*TrackRecord, error) {
	var (
		id           int64
		sessionID    string
		artist       string
		title        string
		playlist     sql.NullString
		statusStr    string
		errorMessage sql.NullString
		filePath     sql.NullString
		sourceURL    sql.NullString
		elapsedMS    sql.NullInt64
	)

	if err := scanner.Scan(
		&id,
		&sessionID,
		&artist,
		&title,
		&playlist,
		&statusStr,
		&errorMessage,
		&filePath,
		&sourceURL,
		&elapsedMS,
	); err != nil {
		return nil, err
	}

	record := &TrackRecord{
		ID:           id,
		SessionID:    sessionID,
		Artist:       artist,
		Title:        title,
		Playlist:     playlist.String,
		Status:       track.DownloadStatus(statusStr),
		ErrorMessage: errorMessage.String,
		FilePath:     filePath.String,
		SourceURL:    sourceURL.String,
	}
	if elapsedMS.Valid {
		record.Elapsed = time.Duration(elapsedMS.Int64) * time.Millisecond
	}
	return record, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
