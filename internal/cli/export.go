package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/eprotocol/internal/export"
	"github.com/sadopc/eprotocol/internal/protocol"
)

// Version is stamped into recipe snapshots.
var Version = "dev"

func snapshotMetadata() export.Metadata {
	return export.Metadata{ClientInfo: "eprotocol-cli", AppVersion: Version}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recipes or the daily log",
	}

	recipesCmd := &cobra.Command{
		Use:   "recipes <path>",
		Short: "Write every recipe to a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				s := a.book.Export(snapshotMetadata())
				if err := export.WriteSnapshot(s, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Exported %d recipes to %s\n", len(s.Recipes), args[0])
				return nil
			})
		},
	}

	var format, from, to string
	logCmd := &cobra.Command{
		Use:   "log <path>",
		Short: "Write tracked days to CSV or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseDateOr(to, opts.now())
			if err != nil {
				return err
			}
			start, err := parseDateOr(from, protocol.Epoch)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				days, err := a.tracker.Log(start, end)
				if err != nil {
					return err
				}
				switch strings.ToLower(format) {
				case "csv":
					err = export.ToCSV(days, args[0])
				case "json":
					err = export.ToJSON(days, args[0])
				default:
					return fmt.Errorf("unknown format %q (csv or json)", format)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Exported %d days to %s\n", len(days), args[0])
				return nil
			})
		},
	}
	logCmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or json")
	logCmd.Flags().StringVar(&from, "from", "", "First date YYYY-MM-DD (default rotation start)")
	logCmd.Flags().StringVar(&to, "to", "", "Last date YYYY-MM-DD (default today)")

	cmd.AddCommand(recipesCmd, logCmd)
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Import recipes from a JSON snapshot, replacing recipes with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := export.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				n, err := a.book.Import(s)
				if err != nil {
					return fmt.Errorf("imported %d of %d recipes: %w", n, len(s.Recipes), err)
				}
				fmt.Fprintf(a.out, "Imported %d recipes\n", n)
				return nil
			})
		},
	}
}
