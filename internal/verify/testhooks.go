package verify

import (
	"context"

	"cratedig/internal/media/ffprobe"
)

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeArtifact
	probeArtifact = fn
	return func() {
		probeArtifact = previous
	}
}

// SetExtractForTests overrides the ffmpeg sample extraction during tests.
func SetExtractForTests(fn func(context.Context, string, string, string, float64, float64, int) error) func() {
	previous := extractSample
	extractSample = fn
	return func() {
		extractSample = previous
	}
}
