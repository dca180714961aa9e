// Package cli is the eprotocol command tree. Running the root command
// without a subcommand starts the terminal UI.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/eprotocol/internal/tui"
)

type rootOptions struct {
	dbPath string
	date   string
	now    func() time.Time
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:           "eprotocol",
		Short:         "eprotocol plans meals, training and supplements day by day",
		Long:          "eprotocol is a local-first nutrition protocol tracker: a rotating meal and activity plan, custom recipes, and a metabolic profile.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				return tui.Run(tui.Deps{
					Tracker:  a.tracker,
					Recipes:  a.book,
					Profiles: a.profiles,
					Settings: a.store,
					Log:      a.log,
					Locale:   a.locale,
				})
			})
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.date, "date", "", "Date YYYY-MM-DD (default today)")

	cmd.AddCommand(
		newTodayCmd(opts),
		newWeekCmd(opts),
		newCandidatesCmd(opts),
		newSelectCmd(opts),
		newToggleCmd(opts),
		newRecipeCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newProfileCmd(opts),
		newSettingsCmd(opts),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
