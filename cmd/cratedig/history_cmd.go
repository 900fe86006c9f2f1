package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cratedig/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past download sessions",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func withHistoryStore(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				sessions, err := store.RecentSessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet")
					return nil
				}

				rows := make([][]string, 0, len(sessions))
				for _, session := range sessions {
					state := humanDuration(session.Duration())
					if !session.Finished() {
						state = "interrupted"
					}
					rows = append(rows, []string{
						shortID(session.ID),
						humanize.Time(session.StartedAt),
						state,
						strconv.Itoa(session.TotalTracks),
						strconv.Itoa(session.Successful),
						strconv.Itoa(session.Failed),
						fmt.Sprintf("%.0f%%", session.SuccessRate()),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Started", "Duration", "Tracks", "OK", "Failed", "Rate"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the per-track outcomes of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				session, err := store.FindSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				records, err := store.SessionTracks(cmd.Context(), session.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s\n", session.ID)
				fmt.Fprintf(out, "Started: %s", session.StartedAt.Local().Format(time.RFC1123))
				if session.Finished() {
					fmt.Fprintf(out, "  Duration: %s", humanDuration(session.Duration()))
				} else {
					fmt.Fprint(out, "  (interrupted)")
				}
				fmt.Fprintf(out, "\nTracks: %d  Successful: %d  Failed: %d  Verified: %d  Verification failures: %d\n\n",
					session.TotalTracks, session.Successful, session.Failed, session.Verified, session.VerificationFailures)

				if len(records) == 0 {
					fmt.Fprintln(out, "No track records stored for this session")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, record := range records {
					note := record.ErrorMessage
					if note == "" && record.Status.Succeeded() {
						note = record.FilePath
					}
					rows = append(rows, []string{
						string(record.Status),
						record.DisplayName(),
						record.Playlist,
						note,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Track", "Playlist", "Notes"}, rows, nil))
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var olderThanDays int

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete old sessions from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThanDays < 0 {
				return fmt.Errorf("--older-than must be zero or positive")
			}
			return withHistoryStore(ctx, func(store *history.Store) error {
				cutoff := time.Now().AddDate(0, 0, -olderThanDays)
				removed, err := store.Clear(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d sessions older than %d days\n", removed, olderThanDays)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than", 30, "Delete sessions older than this many days")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func humanDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}
