package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebridge/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Errors  []string       `json:"errors,omitempty"`
	Summary *ConfigSummary `json:"summary,omitempty"`
}

// ConfigSummary describes a valid configuration.
type ConfigSummary struct {
	Match    string `json:"match"`
	Fields   int    `json:"fields"`
	Scenes   int    `json:"scenes"`
	Queued   int    `json:"queued"`
	Profiles int    `json:"profiles"`
	Strict   bool   `json:"strict"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration file",
		Long: `Validate a scorebridge configuration file without starting a session.

Checks the document against the configuration schema (unknown keys,
formats, durations, required profile names), then the cross-field rules
(score bounds, match and queue formats). Environment overrides are applied
as they would be by run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return outputValidateError(formatter, ErrCodeConfigRead, fmt.Sprintf("config file not found: %s", path), nil)
	}

	formatter.VerboseLog("Validating %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationErrors(formatter, configErrors(err))
	}

	return outputValidateSuccess(formatter, summarize(cfg))
}

// configErrors splits a load error into one message per problem.
func configErrors(err error) []string {
	var schemaErr *config.SchemaError
	text := err.Error()
	if errors.As(err, &schemaErr) {
		text = schemaErr.Details
	}

	var msgs []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "invalid config")
	}
	return msgs
}

func summarize(cfg config.Config) *ConfigSummary {
	f := cfg.FieldNames
	wired := 0
	for _, name := range []string{
		f.P1Name, f.P1Team, f.P1Country, f.P1Flag, f.P1Score,
		f.P2Name, f.P2Team, f.P2Country, f.P2Flag, f.P2Score,
		f.Round, f.Format,
	} {
		if name != "" {
			wired++
		}
	}
	m := cfg.Match
	return &ConfigSummary{
		Match:    fmt.Sprintf("%s %s vs %s (%s)", m.RoundLabel, m.Player1.Name, m.Player2.Name, m.Format.Label()),
		Fields:   wired,
		Scenes:   len(cfg.SceneNames),
		Queued:   len(cfg.Queue),
		Profiles: len(cfg.Profiles),
		Strict:   cfg.Strict,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, summary *ConfigSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Summary: summary})
	}

	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	fmt.Fprintf(formatter.Writer, "  Match:    %s\n", strings.TrimSpace(summary.Match))
	fmt.Fprintf(formatter.Writer, "  Fields:   %d wired\n", summary.Fields)
	fmt.Fprintf(formatter.Writer, "  Scenes:   %d\n", summary.Scenes)
	fmt.Fprintf(formatter.Writer, "  Queued:   %d\n", summary.Queued)
	fmt.Fprintf(formatter.Writer, "  Profiles: %d\n", summary.Profiles)
	if summary.Strict {
		fmt.Fprintln(formatter.Writer, "  Strict mode")
	}
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Unreadable input is a command-level error (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []string) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	if formatter.Format == "json" {
		if err := formatter.Fail(ErrCodeConfigInvalid, errs[0], ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, msg := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}

	return failure
}
