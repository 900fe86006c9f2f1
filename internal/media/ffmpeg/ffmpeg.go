// Package ffmpeg drives the ffmpeg binary for the one transcode step
// verification needs: cutting a fingerprintable sample out of a downloaded
// artifact.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ExtractSample transcodes a time range of the source into a mono WAV at
// the given sample rate, the input Chromaprint expects. offsetSeconds is
// applied as input seeking so long files stay cheap to sample.
func ExtractSample(ctx context.Context, ffmpegBinary, source, dest string, offsetSeconds, lengthSeconds float64, sampleRateHz int) error {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(source) == "" {
		return errors.New("extract sample: empty source path")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("extract sample: empty destination path")
	}
	if offsetSeconds < 0 {
		return fmt.Errorf("extract sample: invalid offset %v", offsetSeconds)
	}
	if lengthSeconds <= 0 {
		return fmt.Errorf("extract sample: invalid length %v", lengthSeconds)
	}
	if sampleRateHz <= 0 {
		return fmt.Errorf("extract sample: invalid sample rate %d", sampleRateHz)
	}

	args := sampleArgs(source, dest, offsetSeconds, lengthSeconds, sampleRateHz)
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract sample: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func sampleArgs(source, dest string, offsetSeconds, lengthSeconds float64, sampleRateHz int) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(offsetSeconds),
		"-t", formatSeconds(lengthSeconds),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRateHz),
		"-c:a", "pcm_s16le",
		dest,
	}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
