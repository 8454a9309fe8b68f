package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebridge/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Pass   bool                 `json:"pass"`
	Golden harness.GoldenStatus `json:"golden,omitempty"`
	Errors []string             `json:"errors,omitempty"`
	// Trace is set when the golden file does not match.
	Trace []harness.TraceEvent `json:"trace,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run automation scenarios",
		Long: `Run overlay automation scenarios using the harness.

Each scenario file builds an in-memory control surface, feeds it intent
lines and checks the final state, the undo history, the journal and the
remote writes. If <scenarios-dir>/golden/<file>.golden exists the write
trace must also match it; on a mismatch the trace is printed.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  scorebridge test ./scenarios
  scorebridge test ./scenarios --filter "score_*"
  scorebridge test ./scenarios --update
  scorebridge test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	w := cmd.OutOrStdout()
	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	summary := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenario(file, opts.Update)
		if sr.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Scenarios = append(summary.Scenarios, sr)
		if opts.Format != "json" {
			printScenario(w, sr)
		}
	}

	return reportTests(w, opts.Format, summary)
}

// findScenarioFiles lists the .yaml/.yml files under dir whose base name
// matches filter, skipping golden directories.
func findScenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenario loads and runs one scenario file and checks its golden trace.
// Assertions must hold even when the golden file is being rewritten.
func runScenario(file string, update bool) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load error: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	res, err := harness.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		return sr
	}
	sr.Errors = append(sr.Errors, res.Errors...)

	sr.Golden, err = harness.CheckGoldenFile(goldenFilePath(file), scenario.Name, res, update)
	switch {
	case err != nil:
		sr.Errors = append(sr.Errors, fmt.Sprintf("golden file: %v", err))
	case sr.Golden == harness.GoldenMismatch:
		sr.Errors = append(sr.Errors, "golden file mismatch (run with --update to regenerate)")
		sr.Trace = res.Trace
	}

	sr.Pass = res.Pass && len(sr.Errors) == 0
	return sr
}

// goldenFilePath returns <dir>/golden/<name>.golden for <dir>/<name>.yaml.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// printScenario renders one scenario outcome for text output.
func printScenario(w io.Writer, sr ScenarioResult) {
	mark := "✓"
	if !sr.Pass {
		mark = "✗"
	}
	line := mark + " " + sr.Name
	if sr.Pass && sr.Golden == harness.GoldenUpdated {
		line += " (golden updated)"
	}
	fmt.Fprintln(w, line)

	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if len(sr.Trace) > 0 {
		fmt.Fprintln(w, "  trace:")
		for _, ev := range sr.Trace {
			fmt.Fprintf(w, "    %s\n", ev.Summary())
			for _, wr := range ev.Writes {
				fmt.Fprintf(w, "      %s %s", wr.Op, wr.Target)
				if wr.Key != "" {
					fmt.Fprintf(w, " %s=%q", wr.Key, wr.Value)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

// reportTests writes the summary and returns ExitFailure when any scenario
// failed.
func reportTests(w io.Writer, format string, summary TestResult) error {
	var failure error
	if summary.Failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}

	if format == "json" {
		if failure == nil {
			return writeJSON(w, summary)
		}
		formatter := &OutputFormatter{Format: format, Writer: w}
		if err := formatter.Fail(ErrCodeTestFailed, failure.Error(), summary); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	if failure != nil {
		return failure
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
