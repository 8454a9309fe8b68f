package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebridge/internal/automation"
	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/result"
	"github.com/roach88/scorebridge/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// IDs allows overriding the history record id generator (for testing).
	// If nil, the dispatcher uses UUIDv7.
	IDs command.IDGenerator
}

// IntentOutcome is one line of run output in JSON mode.
type IntentOutcome struct {
	Line    int    `json:"line"`
	Intent  string `json:"intent"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Run an operator session",
		Long: `Run an operator session from a configuration file.

Intent lines are read from stdin, one per line, and executed in order
against a simulated control surface laid out from the configuration's
field and scene names. Blank lines and lines starting with # are skipped.
Each intent's outcome is printed as it completes.

With --db (or journal: in the configuration) every dispatched command is
appended to the SQLite journal and profiles are looked up in the database
before the configuration.

Exit codes:
  0 - Every intent succeeded
  1 - One or more intents failed
  2 - Command error (unreadable config, database error, etc.)

Example:
  printf 'connect\nscore p1 +1\nundo\n' | scorebridge run event.yaml
  scorebridge run event.yaml --db ./scorebridge.db --format json < intents.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal and profile database")

	return cmd
}

func runSession(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	hostOpts := []automation.Option{automation.WithLogger(logger)}
	if opts.IDs != nil {
		hostOpts = append(hostOpts, automation.WithIDGenerator(opts.IDs))
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Journal
	}
	if dbPath != "" {
		logger.Info("opening database", "path", dbPath)
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		hostOpts = append(hostOpts,
			automation.WithJournal(st),
			automation.WithProfiles(automation.ProfileChain{st, cfg}),
		)
	}

	surface := simulatedSurface(cfg)
	host := automation.New(cfg, surface, hostOpts...)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("session started", "config", configPath, "url", cfg.Connection.URL, "strict", cfg.Strict)

	total, failed, err := executeIntents(ctx, host, cmd.InOrStdin(), cmd.OutOrStdout(), opts.Format, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read intents", err)
	}

	if host.Gateway().IsConnected() {
		host.Disconnect(context.WithoutCancel(ctx))
	}
	logger.Info("session ended", "intents", total, "failed", failed)

	if opts.Format != "json" {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d intent(s), %d failed\n", total, failed)
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d intent(s) failed", failed, total))
	}
	return nil
}

// executeIntents runs each intent line from r and writes its outcome to w.
// It stops early when ctx is done.
func executeIntents(ctx context.Context, host *automation.Host, r io.Reader, w io.Writer, format string, logger *slog.Logger) (total, failed int, err error) {
	encoder := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if ctx.Err() != nil {
			logger.Info("interrupted, skipping remaining intents")
			break
		}

		res := host.Exec(ctx, line)
		total++
		if !res.OK {
			failed++
		}

		if format == "json" {
			if err := encoder.Encode(IntentOutcome{
				Line:    lineNo,
				Intent:  line,
				OK:      res.OK,
				Code:    string(res.Code),
				Message: res.Message,
			}); err != nil {
				return total, failed, err
			}
			continue
		}
		fmt.Fprintln(w, formatOutcome(line, res))
	}
	return total, failed, scanner.Err()
}

// formatOutcome renders one intent outcome for text output.
func formatOutcome(intent string, res result.Result) string {
	if res.OK {
		return fmt.Sprintf("✓ %s: %s", intent, res.Message)
	}
	if res.Code == result.CodeNone {
		return fmt.Sprintf("✗ %s: %s", intent, res.Message)
	}
	return fmt.Sprintf("✗ %s: [%s] %s", intent, res.Code, res.Message)
}
