package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"cratedig/internal/config"
	"cratedig/internal/download"
	"cratedig/internal/history"
	"cratedig/internal/logging"
	"cratedig/internal/notify"
	"cratedig/internal/playlist"
	"cratedig/internal/services"
	"cratedig/internal/services/spotify"
	"cratedig/internal/track"
	"cratedig/internal/verify"
)

const lockFileName = "session.lock"

// Extractor resolves playlist sources into a deduplicated track list.
type Extractor interface {
	ExtractAll(ctx context.Context, sources []playlist.Source) ([]track.PlaylistInfo, []track.Track, error)
}

// Resolver downloads one track and reports the outcome as a value.
type Resolver interface {
	Resolve(ctx context.Context, t track.Track) track.DownloadResult
}

// Verifier runs the optional fingerprint stage for a downloaded artifact.
type Verifier interface {
	Active() bool
	CapabilityReason() string
	Verify(ctx context.Context, path string, expected track.Track) verify.Outcome
}

// Coordinator sequences extraction, downloads, verification, and reporting
// for one session. It holds no per-run state; everything a run produces
// travels through return values and the history store.
type Coordinator struct {
	cfg          *config.Config
	extractor    Extractor
	resolver     Resolver
	verifier     Verifier
	store        *history.Store
	notifier     notify.Service
	logger       *slog.Logger
	reportWriter io.Writer
	progress     bool
}

// Option customizes coordinator construction.
type Option func(*Coordinator)

// WithReportWriter redirects the end-of-session report, which defaults to
// stdout so logs on stderr never interleave with it.
func WithReportWriter(w io.Writer) Option {
	return func(c *Coordinator) {
		if w != nil {
			c.reportWriter = w
		}
	}
}

// WithProgressBar overrides TTY detection for the download progress bar.
func WithProgressBar(enabled bool) Option {
	return func(c *Coordinator) {
		c.progress = enabled
	}
}

// New wires the production collaborators from cfg. The returned coordinator
// owns the history store; call Close when the session is done.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is required", services.ErrValidation)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	catalog, err := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.Market)
	if err != nil {
		return nil, fmt.Errorf("build spotify client: %w", err)
	}
	extractor, err := playlist.NewExtractor(catalog, cfg.Download.PlaylistDelaySeconds, logger)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	resolver, err := download.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build downloader: %w", err)
	}
	capability := verify.Probe(cfg)
	verifier, err := verify.NewVerifier(cfg, capability, logger)
	if err != nil {
		return nil, fmt.Errorf("build verifier: %w", err)
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	coordinator := NewWithDependencies(cfg, extractor, resolver, verifier, store, notify.NewService(cfg), logger, opts...)
	return coordinator, nil
}

// NewWithDependencies allows injecting collaborators (used in tests). store
// may be nil to run without history persistence.
func NewWithDependencies(cfg *config.Config, extractor Extractor, resolver Resolver, verifier Verifier, store *history.Store, notifier notify.Service, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewService(cfg)
	}
	coordinator := &Coordinator{
		cfg:          cfg,
		extractor:    extractor,
		resolver:     resolver,
		verifier:     verifier,
		store:        store,
		notifier:     notifier,
		logger:       logging.NewComponentLogger(logger, "session"),
		reportWriter: os.Stdout,
		progress:     isatty.IsTerminal(os.Stderr.Fd()),
	}
	for _, opt := range opts {
		opt(coordinator)
	}
	return coordinator
}

// Close releases resources owned by the coordinator.
func (c *Coordinator) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// Run executes a full session. Partial failure is reported, not returned as
// an error; only configuration problems, an empty extraction, and context
// cancellation make a run fail.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	lock := flock.New(filepath.Join(c.cfg.Paths.StateDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: another session is already running (lock held at %s)", services.ErrValidation, lock.Path())
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			c.logger.Warn("session lock release failed", logging.Error(unlockErr))
		}
	}()

	sessionID := uuid.NewString()
	ctx = services.WithSessionID(ctx, sessionID)
	logger := logging.WithContext(ctx, c.logger)
	startedAt := time.Now()

	logger.Info("session starting",
		logging.String("sources_file", c.cfg.Paths.SourcesFile),
		logging.String("output_dir", c.cfg.Download.OutputDir),
	)
	if c.verifier != nil && !c.verifier.Active() {
		logger.Info("fingerprint verification inactive",
			logging.String("reason", c.verifier.CapabilityReason()),
		)
	}

	playlists, tracks, err := c.extract(ctx, logger)
	if err != nil {
		if ctx.Err() == nil {
			if notifyErr := c.notifier.NotifyError(ctx, err, "extraction"); notifyErr != nil {
				logger.Warn("error notification failed", logging.Error(notifyErr))
			}
		}
		return err
	}

	if c.store != nil {
		if err := c.store.StartSession(ctx, sessionID, startedAt, len(playlists), len(tracks)); err != nil {
			logging.WarnWithContext(logger, "history write failed; session continues", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will be missing from cratedig history"),
			)
		}
	}
	if err := c.notifier.NotifySessionStarted(ctx, len(playlists), len(tracks)); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}

	stats, failed := c.downloadLoop(ctx, sessionID, tracks, logger)
	stats.Elapsed = time.Since(startedAt)

	c.report(ctx, summary{
		SessionID:    sessionID,
		Playlists:    playlists,
		Stats:        stats,
		FailedTracks: failed,
		OutputDir:    c.cfg.Download.OutputDir,
	}, logger)
	return nil
}

// extract runs the EXTRACT stage: sources file, per-source extraction, and
// the zero-track abort.
func (c *Coordinator) extract(ctx context.Context, logger *slog.Logger) ([]track.PlaylistInfo, []track.Track, error) {
	sources, err := playlist.ReadSources(c.cfg.Paths.SourcesFile, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("read sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("%w: no valid playlist sources found in %s", services.ErrValidation, c.cfg.Paths.SourcesFile)
	}

	playlists, tracks, err := c.extractor.ExtractAll(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	if len(tracks) == 0 {
		return nil, nil, fmt.Errorf("%w: extraction produced no tracks; check the playlist links and Spotify credentials", services.ErrValidation)
	}
	return playlists, tracks, nil
}
