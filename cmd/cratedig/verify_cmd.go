package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cratedig/internal/fileutil"
	"cratedig/internal/logging"
	"cratedig/internal/track"
	"cratedig/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var artist string
	var title string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Fingerprint a local audio file and check it against expected metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := strings.TrimSpace(args[0])
			if !fileutil.NonEmptyFile(path) {
				return fmt.Errorf("file missing or empty: %s", path)
			}
			if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
				return fmt.Errorf("--artist and --title are required")
			}

			capability := verify.Probe(cfg)
			if !capability.Active() {
				return fmt.Errorf("verification unavailable: %s", capability.Reason)
			}

			level := cfg.Logging.Level
			if strings.TrimSpace(logLevel) != "" {
				level = logLevel
			}
			logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			verifier, err := verify.NewVerifier(cfg, capability, logger)
			if err != nil {
				return err
			}

			expected := track.Track{Title: title, Artist: artist}
			outcome := verifier.Verify(cmd.Context(), path, expected)

			out := cmd.OutOrStdout()
			if outcome.Match != nil {
				fmt.Fprintf(out, "Identified: %s - %s (confidence %.2f)\n",
					outcome.Match.Artist, outcome.Match.Title, outcome.Match.Confidence)
			}
			if outcome.Accepted {
				fmt.Fprintf(out, "VERIFIED: file matches %s\n", expected.DisplayName())
				return nil
			}
			return fmt.Errorf("verification failed: %s", outcome.Reason)
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "Expected artist")
	cmd.Flags().StringVar(&title, "title", "", "Expected title")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured console log level")
	return cmd
}
