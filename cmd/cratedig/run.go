package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cratedig/internal/config"
	"cratedig/internal/deps"
	"cratedig/internal/logging"
	"cratedig/internal/services"
	"cratedig/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve every configured playlist into local audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg, logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured console log level")
	return cmd
}

func runSession(cmdCtx context.Context, cfg *config.Config, logLevel string) error {
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: missing required settings: %s", services.ErrConfiguration, strings.Join(missing, ", "))
	}

	statuses := deps.CheckSystemDeps(cfg)
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Command)
		}
		return fmt.Errorf("%w: required tools not found: %s (run `cratedig deps` for details)", services.ErrConfiguration, strings.Join(names, ", "))
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := cfg.Logging.Level
	if strings.TrimSpace(logLevel) != "" {
		level = logLevel
	}
	sessionLogPath := logging.SessionLogPath(cfg.Paths.LogDir, time.Now())
	logger, err := logging.New(logging.Options{
		Level:          level,
		Format:         cfg.Logging.Format,
		SessionLogPath: sessionLogPath,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg, statuses)
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "download_session_*.log", Exclude: []string{sessionLogPath}},
	)

	coordinator, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	defer coordinator.Close()

	return coordinator.Run(signalCtx)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config, statuses []deps.Status) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("spotify_credentials_present", cfg.SpotifyCredentialsPresent()),
		logging.Bool("acoustid_key_present", strings.TrimSpace(cfg.AcoustID.APIKey) != ""),
	}
	for _, status := range statuses {
		key := strings.ToLower(strings.ReplaceAll(status.Name, "-", "_")) + "_available"
		attrs = append(attrs, logging.Bool(key, status.Available))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
