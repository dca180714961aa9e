package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/sadopc/eprotocol/internal/store"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				settings, err := a.store.GetAllSettings()
				if err != nil {
					return err
				}
				for _, s := range settings {
					fmt.Fprintf(a.out, "%s\t%s\n", s.Key, s.Value)
				}
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference (activity_minutes, locale)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := validateSetting(key, value); err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				if err := a.store.SetSetting(key, value); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s = %s\n", key, value)
				return nil
			})
		},
	}
	cmd.AddCommand(set)
	return cmd
}

func validateSetting(key, value string) error {
	switch key {
	case store.SettingActivityMinutes:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number of minutes", key)
		}
	case store.SettingLocale:
		if _, err := language.Parse(value); err != nil {
			return fmt.Errorf("unknown locale %q", value)
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
