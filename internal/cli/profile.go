package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/store"
)

// ProfileOptions holds flags shared by the profile subcommands.
type ProfileOptions struct {
	*RootOptions
	Database string
}

// NewProfileCommand creates the profile command and its subcommands.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage stored player profiles",
		Long: `Manage the player profile directory used by the "profile" intent.

Profiles in the database take precedence over profiles in the
configuration file.

Examples:
  scorebridge profile add daigo --name Daigo --team BST --country jp --chars Ryu,Ken --db ./scorebridge.db
  scorebridge profile list --db ./scorebridge.db
  scorebridge profile delete daigo --db ./scorebridge.db`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newProfileAddCommand(opts))
	cmd.AddCommand(newProfileListCommand(opts))
	cmd.AddCommand(newProfileDeleteCommand(opts))

	return cmd
}

func newProfileAddCommand(opts *ProfileOptions) *cobra.Command {
	var info match.PlayerInfo
	var chars string

	cmd := &cobra.Command{
		Use:           "add <id>",
		Short:         "Add or replace a profile",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info.Characters = splitChars(chars)
			return runProfileAdd(opts, args[0], info, cmd)
		},
	}

	cmd.Flags().StringVar(&info.Name, "name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&info.Team, "team", "", "team tag")
	cmd.Flags().StringVar(&info.Country, "country", "", "country id")
	cmd.Flags().StringVar(&chars, "chars", "", "comma-separated characters")

	return cmd
}

func newProfileListCommand(opts *ProfileOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List profiles",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileList(opts, cmd)
		},
	}
}

func newProfileDeleteCommand(opts *ProfileOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a profile",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileDelete(opts, args[0], cmd)
		},
	}
}

func runProfileAdd(opts *ProfileOptions, id string, info match.PlayerInfo, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if err := st.UpsertProfile(commandContext(cmd), id, info); err != nil {
		return WrapExitError(ExitCommandError, "failed to save profile", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.Success(store.Profile{ID: id, Info: info})
	}
	return formatter.Success(fmt.Sprintf("✓ saved profile %s (%s)", id, info.Name))
}

func runProfileList(opts *ProfileOptions, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	profiles, err := st.ListProfiles(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list profiles", err)
	}

	if opts.Format == "json" {
		if profiles == nil {
			profiles = []store.Profile{}
		}
		return writeJSON(cmd.OutOrStdout(), profiles)
	}

	w := cmd.OutOrStdout()
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles.")
		return nil
	}
	for _, p := range profiles {
		line := fmt.Sprintf("  %-16s %s", p.ID, p.Info.Name)
		if p.Info.Team != "" {
			line += " [" + p.Info.Team + "]"
		}
		if p.Info.Country != "" {
			line += " " + p.Info.Country
		}
		if len(p.Info.Characters) > 0 {
			line += " (" + strings.Join(p.Info.Characters, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func runProfileDelete(opts *ProfileOptions, id string, cmd *cobra.Command) error {
	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.DeleteProfile(commandContext(cmd), id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to delete profile", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if !deleted {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("no profile %q", id), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("no profile %q", id))
	}
	return formatter.Success(fmt.Sprintf("✓ deleted profile %s", id))
}

// openExistingStore opens a database that must already exist, so a typo in
// --db does not silently create an empty one.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func splitChars(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
