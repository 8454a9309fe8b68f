package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebridge/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the operations journal",
		Long: `Show the operations journal recorded by run --db.

Each row is one dispatched command: its action (DO, UNDO or REDO), the
command name, the outcome and, with --verbose, the match after it ran.

Examples:
  scorebridge journal --db ./scorebridge.db
  scorebridge journal --db ./scorebridge.db --limit 20 --verbose
  scorebridge journal --db ./scorebridge.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "show the newest n rows (0 for all)")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.ReadJournal(commandContext(cmd), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Format == "json" {
		if rows == nil {
			rows = []store.JournalRow{}
		}
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	w := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return nil
	}
	for _, row := range rows {
		formatJournalRow(w, row, opts.Verbose)
	}
	return nil
}

// formatJournalRow formats a single journal row for text output.
func formatJournalRow(w io.Writer, row store.JournalRow, verbose bool) {
	status := "ok"
	if !row.OK {
		status = "FAILED"
		if row.Code != "" {
			status += " " + string(row.Code)
		}
	}
	fmt.Fprintf(w, "  [%d] %s %-4s %-14s %s: %s\n",
		row.Seq,
		row.RecordedAt.Format(time.TimeOnly),
		row.Action,
		row.Command,
		status,
		row.Message,
	)
	if verbose {
		m := row.Match
		fmt.Fprintf(w, "       Match: %s %s %d-%d %s (%s)\n",
			m.RoundLabel, m.Player1.Name, m.Player1.Score, m.Player2.Score, m.Player2.Name, m.Format.Label())
		if row.ID != "" {
			fmt.Fprintf(w, "       ID: %s\n", truncateID(row.ID))
		}
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
