package session

import (
	"fmt"
	"os"
	"strings"

	"cratedig/internal/fileutil"
	"cratedig/internal/track"
)

// FailedListName is the recovery file written next to the downloads.
const FailedListName = "failed_downloads.txt"

// WriteFailedList persists the unresolved tracks in a human-readable form
// for manual retry. An empty list removes any stale file from an earlier
// run so the recovery list always reflects the latest session.
func WriteFailedList(path string, failed []track.Track) error {
	if len(failed) == 0 {
		return fileutil.RemoveIfExists(path)
	}

	var builder strings.Builder
	builder.WriteString("# Failed Downloads - You can manually search for these\n")
	builder.WriteString("# Format: Artist - Title (Playlist)\n\n")
	for _, t := range failed {
		if playlist := strings.TrimSpace(t.SourcePlaylist); playlist != "" {
			fmt.Fprintf(&builder, "%s (from %s)\n", t.DisplayName(), playlist)
		} else {
			builder.WriteString(t.DisplayName() + "\n")
		}
	}
	return os.WriteFile(path, []byte(builder.String()), 0o644)
}
