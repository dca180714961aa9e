package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newWeekCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Summarize the Monday to Sunday week containing the date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := opts.day()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				w, err := a.tracker.Week(date)
				if err != nil {
					return err
				}

				fmt.Fprintf(a.out, "Week %s to %s\n\n", w.Start, w.End)
				fmt.Fprintln(a.out, "DATE\tMEALS\tACTIVITY\tSUPPS\tKCAL")
				for _, d := range w.Days {
					if !d.Tracked {
						fmt.Fprintf(a.out, "%s\t-\t%s\t-\t-\n", d.Date, d.Activity)
						continue
					}
					fmt.Fprintf(a.out, "%s\t%d/5\t%s %s\t%d\t%s\n",
						d.Date, d.MealsDone, check(d.ActivityDone), d.Activity, d.SupplementsDone, a.num(d.Consumed.Kcal, 0))
				}

				fmt.Fprintln(a.out)
				fmt.Fprintf(a.out, "Average:     %s\n", a.macros(w.Average))
				fmt.Fprintf(a.out, "Objectives:  %s\n", a.objectives(w.Objectives))
				fmt.Fprintf(a.out, "Meals:       %d/%d\n", w.MealsCompleted, w.MealsPlanned)
				fmt.Fprintf(a.out, "Activities:  %d/%d\n", w.ActivitiesCompleted, w.ActivitiesPlanned)
				if len(w.CompletedActivities) > 0 {
					fmt.Fprintf(a.out, "Done:        %s\n", strings.Join(w.CompletedActivities, ", "))
				}
				fmt.Fprintf(a.out, "Supplements: %d/%d\n", w.SupplementsCompleted, w.SupplementsPlanned)
				fmt.Fprintf(a.out, "Burned:      %s kcal\n", a.num(float64(w.CaloriesBurned), 0))
				return nil
			})
		},
	}
}
