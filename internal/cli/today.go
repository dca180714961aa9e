package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/protocol"
	"github.com/sadopc/eprotocol/internal/tracker"
)

func newTodayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the day's protocol and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := opts.day()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				d, err := a.tracker.Day(date)
				if err != nil {
					return err
				}
				a.printDay(d, protocol.DayIndex(date))
				return nil
			})
		},
	}
}

func (a *app) printDay(d tracker.Day, index int) {
	fmt.Fprintf(a.out, "Date: %s (day %d)\n\n", d.Protocol.Date, index)
	for _, slot := range model.AllSlots {
		m := d.Protocol.Meal(slot)
		fmt.Fprintf(a.out, "%s %-20s %s  %s kcal\n", check(d.Progress.Done(slot)), slot.Label(), m.Name, a.num(m.Kcal, 0))
	}

	burned := ""
	if d.Profile != nil {
		burned = fmt.Sprintf(", %s kcal", a.num(float64(d.CaloriesBurned), 0))
	}
	fmt.Fprintf(a.out, "%s %-20s %s (%d min%s)\n", check(d.Progress.Activity), "Activity", d.Protocol.Activity, a.tracker.ActivityMinutes, burned)

	fmt.Fprintln(a.out, "\nSupplements:")
	for i, name := range d.Protocol.Supplements {
		done := i < len(d.Progress.Supplements) && d.Progress.Supplements[i]
		fmt.Fprintf(a.out, "  %d %s %s\n", i, check(done), name)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Planned:    %s\n", a.macros(d.Protocol.Totals))
	fmt.Fprintf(a.out, "Consumed:   %s\n", a.macros(d.Consumed))
	if d.Profile != nil {
		fmt.Fprintf(a.out, "Objectives: %s\n", a.objectives(d.Objectives))
	} else {
		fmt.Fprintln(a.out, "Objectives: no profile (run `eprotocol profile set`)")
	}
}

func newCandidatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <slot>",
		Short: "List the meals selectable for a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := model.ParseSlot(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				for _, m := range a.tracker.Candidates(slot) {
					kind := "static"
					if m.Custom {
						kind = "recipe"
					}
					fmt.Fprintf(a.out, "%s\t%s\t%s\t%s kcal\n", m.Key, kind, m.Name, a.num(m.Kcal, 0))
				}
				return nil
			})
		},
	}
}

func newSelectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Override a meal or the activity of a day",
	}

	meal := &cobra.Command{
		Use:   "meal <slot> [key|recipe-id]",
		Short: "Choose a meal for a slot; omit the key to restore the default",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := model.ParseSlot(args[0])
			if err != nil {
				return err
			}
			key := ""
			if len(args) == 2 {
				key = args[1]
			}
			date, err := opts.day()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				d, err := a.tracker.SelectMeal(date, slot, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s: %s\n", slot.Label(), d.Protocol.Meal(slot).Name)
				return nil
			})
		},
	}

	activity := &cobra.Command{
		Use:   "activity [name]",
		Short: "Choose the activity; omit the name to restore the default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			date, err := opts.day()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				d, err := a.tracker.SelectActivity(date, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Activity: %s\n", d.Protocol.Activity)
				return nil
			})
		},
	}

	cmd.AddCommand(meal, activity)
	return cmd
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <slot|activity|supplement> [index]",
		Short: "Mark a meal, the activity or a supplement done or not done",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := opts.day()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				switch args[0] {
				case "activity":
					d, err := a.tracker.ToggleActivity(date)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s %s\n", check(d.Progress.Activity), d.Protocol.Activity)
				case "supplement":
					if len(args) != 2 {
						return fmt.Errorf("supplement needs an index")
					}
					i, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("invalid supplement index %q", args[1])
					}
					d, err := a.tracker.ToggleSupplement(date, i)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s %s\n", check(d.Progress.Supplements[i]), d.Protocol.Supplements[i])
				default:
					slot, err := model.ParseSlot(args[0])
					if err != nil {
						return err
					}
					d, err := a.tracker.Toggle(date, slot)
					if err != nil {
						return err
					}
					fmt.Fprintf(a.out, "%s %s\n", check(d.Progress.Done(slot)), d.Protocol.Meal(slot).Name)
				}
				return nil
			})
		},
	}
}
