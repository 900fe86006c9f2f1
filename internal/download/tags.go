package download

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2"

	"cratedig/internal/track"
)

// writeTags embeds ID3v2.3 metadata in the downloaded file. yt-dlp's
// --add-metadata pass guesses artist and title from the video title; this
// pass overwrites the guesses with catalog values and records the source
// URL in a comment frame.
func writeTags(path string, t track.Track, sourceURL string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(3)
	tag.SetTitle(t.Title)
	tag.SetArtist(t.Artist)
	if strings.TrimSpace(t.Album) != "" {
		tag.SetAlbum(t.Album)
	}
	if strings.TrimSpace(sourceURL) != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "source",
			Text:        sourceURL,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}
