package verify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"log/slog"

	"cratedig/internal/config"
	"cratedig/internal/fileutil"
	"cratedig/internal/logging"
	"cratedig/internal/media/ffmpeg"
	"cratedig/internal/media/ffprobe"
	"cratedig/internal/services/acoustid"
	"cratedig/internal/services/fpcalc"
	"cratedig/internal/track"
)

// probeArtifact and extractSample are package-level variables so tests can
// override them.
var (
	probeArtifact = ffprobe.Inspect
	extractSample = ffmpeg.ExtractSample
)

// Fingerprinter computes a Chromaprint fingerprint for an audio file.
type Fingerprinter interface {
	Calculate(ctx context.Context, path string) (*fpcalc.Fingerprint, error)
}

// Capability records whether fingerprint verification can run. It is
// resolved once at startup by Probe and never re-detected per track.
type Capability struct {
	Enabled     bool
	FpcalcFound bool
	FFmpegFound bool
	Reason      string
}

// Active reports whether every piece needed for verification is present.
func (c Capability) Active() bool {
	return c.Enabled && c.FpcalcFound && c.FFmpegFound
}

// Probe checks the config switch, the API key, and the external binaries.
// Reason names the first missing piece for operator-facing logs.
func Probe(cfg *config.Config) Capability {
	capability := Capability{}
	switch {
	case !cfg.Verification.Enabled:
		capability.Reason = "verification disabled in config"
	case strings.TrimSpace(cfg.AcoustID.APIKey) == "":
		capability.Reason = "no AcoustID API key configured"
	default:
		capability.Enabled = true
	}
	if _, err := exec.LookPath(cfg.FpcalcBinary()); err == nil {
		capability.FpcalcFound = true
	} else if capability.Reason == "" {
		capability.Reason = fmt.Sprintf("fpcalc binary %q not found", cfg.FpcalcBinary())
	}
	if _, err := exec.LookPath(cfg.FFmpegBinary()); err == nil {
		capability.FFmpegFound = true
	} else if capability.Reason == "" {
		capability.Reason = fmt.Sprintf("ffmpeg binary %q not found", cfg.FFmpegBinary())
	}
	return capability
}

// Outcome reports one verification attempt. A skipped outcome is accepted
// but carries no evidence; the session keeps such tracks at plain success
// rather than marking them verified.
type Outcome struct {
	Accepted bool
	Skipped  bool
	Match    *track.FingerprintMatch
	Reason   string
}

// Verifier runs the fingerprint stage for downloaded artifacts.
type Verifier struct {
	capability    Capability
	identifier    acoustid.Identifier
	fingerprinter Fingerprinter
	ffmpegBinary  string
	ffprobeBinary string
	sampleSeconds int
	sampleRate    int
	confidence    float64
	similarity    float64
	timeout       time.Duration
	logger        *slog.Logger
}

// NewVerifier builds the production verifier. An inactive capability yields
// a verifier that reports skipped acceptance without touching any tool.
func NewVerifier(cfg *config.Config, capability Capability, logger *slog.Logger) (*Verifier, error) {
	var identifier acoustid.Identifier
	var fingerprinter Fingerprinter
	if capability.Active() {
		idClient, err := acoustid.New(cfg.AcoustID.APIKey, cfg.AcoustID.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("build acoustid client: %w", err)
		}
		fpClient, err := fpcalc.New(cfg.FpcalcBinary(), cfg.Verification.TimeoutSeconds)
		if err != nil {
			return nil, fmt.Errorf("build fpcalc client: %w", err)
		}
		identifier = idClient
		fingerprinter = fpClient
	}
	return NewVerifierWithDependencies(cfg, capability, identifier, fingerprinter, logger), nil
}

// NewVerifierWithDependencies allows injecting collaborators (used in tests).
func NewVerifierWithDependencies(cfg *config.Config, capability Capability, identifier acoustid.Identifier, fingerprinter Fingerprinter, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Verifier{
		capability:    capability,
		identifier:    identifier,
		fingerprinter: fingerprinter,
		ffmpegBinary:  cfg.FFmpegBinary(),
		ffprobeBinary: cfg.FFprobeBinary(),
		sampleSeconds: cfg.Verification.SampleSeconds,
		sampleRate:    cfg.Verification.SampleRate,
		confidence:    cfg.Verification.ConfidenceThreshold,
		similarity:    cfg.Verification.SimilarityThreshold,
		timeout:       time.Duration(cfg.Verification.TimeoutSeconds) * time.Second,
		logger:        logging.NewComponentLogger(logger, "verifier"),
	}
}

// Active reports whether real verification will run for this session.
func (v *Verifier) Active() bool {
	return v.capability.Active()
}

// CapabilityReason names why verification is inactive, empty when active.
func (v *Verifier) CapabilityReason() string {
	return v.capability.Reason
}

// Verify checks the artifact at path against the expected track. It never
// returns an error: anything going wrong inside the stage surfaces as a
// rejection, and rejected files stay on disk for manual review.
func (v *Verifier) Verify(ctx context.Context, path string, expected track.Track) Outcome {
	logger := logging.WithContext(ctx, v.logger).With(
		logging.String(logging.FieldTrack, expected.DisplayName()),
	)
	if !v.capability.Active() {
		return Outcome{Accepted: true, Skipped: true, Reason: v.capability.Reason}
	}

	verifyCtx := ctx
	if v.timeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	match, err := v.identify(verifyCtx, path, logger)
	if err != nil {
		logging.WarnWithContext(logger, "identification failed; rejecting artifact", "verification_error",
			logging.Error(err),
			logging.String(logging.FieldImpact, "track is marked verification_failed and the file is kept"),
		)
		return Outcome{Reason: "could not identify file"}
	}
	if match == nil {
		attrs := logging.DecisionAttrs("fingerprint_verification", "rejected", "no confident identification")
		logger.Warn("verification failed", logging.Args(attrs...)...)
		return Outcome{Reason: "no confident identification"}
	}

	identified := fmt.Sprintf("%s - %s", match.Artist, match.Title)
	if match.MatchesTrack(expected, v.similarity) {
		attrs := append(
			logging.DecisionAttrs("fingerprint_verification", "accepted", "identification matches catalog metadata"),
			logging.String("identified", identified),
			logging.Float64("confidence", match.Confidence),
		)
		logger.Info("verification passed", logging.Args(attrs...)...)
		return Outcome{Accepted: true, Match: match, Reason: "identified as " + identified}
	}

	attrs := append(
		logging.DecisionAttrs("fingerprint_verification", "rejected", "identified as a different recording"),
		logging.String("identified", identified),
		logging.Float64("confidence", match.Confidence),
	)
	logger.Warn("verification failed", logging.Args(attrs...)...)
	return Outcome{Match: match, Reason: "identified as " + identified}
}

// identify resolves the artifact to its best acoustic identification, or nil
// when nothing clears the confidence threshold.
func (v *Verifier) identify(ctx context.Context, path string, logger *slog.Logger) (*track.FingerprintMatch, error) {
	if !fileutil.NonEmptyFile(path) {
		return nil, fmt.Errorf("artifact missing or empty: %s", path)
	}

	probe, err := probeArtifact(ctx, v.ffprobeBinary, path)
	if err != nil {
		return nil, fmt.Errorf("inspect artifact: %w", err)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		return nil, fmt.Errorf("artifact reports no duration: %s", path)
	}
	offset, length := sampleWindow(duration, float64(v.sampleSeconds))

	sampleFile, err := os.CreateTemp("", "cratedig-sample-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create sample file: %w", err)
	}
	samplePath := sampleFile.Name()
	if err := sampleFile.Close(); err != nil {
		return nil, fmt.Errorf("close sample file: %w", err)
	}
	defer func() {
		if err := fileutil.RemoveIfExists(samplePath); err != nil {
			logger.Warn("sample cleanup failed", logging.Error(err))
		}
	}()

	if err := extractSample(ctx, v.ffmpegBinary, path, samplePath, offset, length, v.sampleRate); err != nil {
		return nil, fmt.Errorf("extract sample: %w", err)
	}

	fingerprint, err := v.fingerprinter.Calculate(ctx, samplePath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint sample: %w", err)
	}

	response, err := v.identifier.Lookup(ctx, fingerprint.Fingerprint, int(fingerprint.DurationSeconds))
	if err != nil {
		return nil, fmt.Errorf("acoustid lookup: %w", err)
	}
	matches := response.Matches()
	best := bestMatch(matches, v.confidence)
	if best == nil {
		logger.Debug("no match above confidence threshold", logging.Int("results", len(matches)))
	}
	return best, nil
}

// sampleWindow returns the extraction offset and length. Tracks longer than
// the sample are sampled from the temporal center, which avoids intros and
// outros; shorter tracks are used whole.
func sampleWindow(durationSeconds, sampleSeconds float64) (offset, length float64) {
	if sampleSeconds <= 0 || durationSeconds <= sampleSeconds {
		return 0, durationSeconds
	}
	return (durationSeconds - sampleSeconds) / 2, sampleSeconds
}

// bestMatch picks the highest-confidence result that clears the threshold.
// Both comparisons are strict; a score exactly at the threshold is rejected.
func bestMatch(matches []acoustid.Match, threshold float64) *track.FingerprintMatch {
	var best *track.FingerprintMatch
	bestScore := 0.0
	for _, match := range matches {
		if match.Score > bestScore && match.Score > threshold {
			best = &track.FingerprintMatch{
				Title:       orUnknown(match.Title),
				Artist:      orUnknown(match.Artist),
				Confidence:  match.Score,
				Source:      "acoustid",
				RecordingID: match.RecordingID,
			}
			bestScore = match.Score
		}
	}
	return best
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	return value
}
