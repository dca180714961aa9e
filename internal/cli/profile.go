package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/eprotocol/internal/metabolic"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
	"github.com/sadopc/eprotocol/internal/profile"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the metabolic profile",
	}
	cmd.AddCommand(newProfileShowCmd(opts), newProfileSetCmd(opts), newProfileDeleteCmd(opts))
	return cmd
}

func (a *app) printProfile(p model.UserProfile) {
	fmt.Fprintf(a.out, "Weight: %s kg\nHeight: %s cm\nAge: %d\nSex: %s\n",
		a.num(p.WeightKg, 1), a.num(p.HeightCm, 1), p.Age, p.Sex)
	fmt.Fprintf(a.out, "Activity: %s (x%s)\nGoal: %s\nDiet: %s\n",
		p.ActivityLabel, a.num(p.ActivityMultiplier, 3), p.Goal, p.DietType)
	fmt.Fprintf(a.out, "BMR: %s kcal\nTDEE: %s kcal\nTarget: %s kcal\n",
		a.num(p.BMR, 0), a.num(float64(p.TDEE), 0), a.num(float64(p.TargetCalories), 0))
	fmt.Fprintf(a.out, "Macros: P %dg | L %dg | C %dg\n", p.TargetMacros.ProteinG, p.TargetMacros.LipidG, p.TargetMacros.CarbG)
}

func newProfileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile and its targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				p, err := a.profiles.Current()
				if err != nil {
					return err
				}
				if p == nil {
					fmt.Fprintln(a.out, "No profile set")
					return nil
				}
				a.printProfile(*p)
				return nil
			})
		},
	}
}

func newProfileSetCmd(opts *rootOptions) *cobra.Command {
	var (
		weight, height, multiplier string
		age                        int
		sex, goal, diet            string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the profile; omitted flags keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				in := metabolic.Input{
					ActivityMultiplier: 1.55,
					Goal:               model.GoalMaintain,
					DietType:           model.DietStandard,
				}
				cur, err := a.profiles.Current()
				if err != nil {
					return err
				}
				if cur != nil {
					in = profile.InputOf(*cur)
				}

				flags := cmd.Flags()
				for _, f := range []struct {
					name string
					raw  string
					dst  *float64
				}{
					{"weight", weight, &in.WeightKg},
					{"height", height, &in.HeightCm},
					{"activity", multiplier, &in.ActivityMultiplier},
				} {
					if !flags.Changed(f.name) {
						continue
					}
					if !numfmt.IsValidNumber(f.raw) {
						return fmt.Errorf("invalid --%s %q", f.name, f.raw)
					}
					*f.dst = numfmt.ParseLocalFloat(f.raw)
				}
				if flags.Changed("age") {
					in.Age = age
				}
				if flags.Changed("sex") {
					in.Sex = model.Sex(sex)
				}
				if flags.Changed("goal") {
					in.Goal = model.Goal(goal)
				}
				if flags.Changed("diet") {
					in.DietType = model.DietType(diet)
				}

				p, err := a.profiles.Save(in)
				if err != nil {
					return err
				}
				a.printProfile(p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&weight, "weight", "", "Weight in kg")
	cmd.Flags().StringVar(&height, "height", "", "Height in cm")
	cmd.Flags().IntVar(&age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().StringVar(&multiplier, "activity", "", "Activity multiplier between 1.2 and 1.9")
	cmd.Flags().StringVar(&goal, "goal", "", "lose, maintain or gain")
	cmd.Flags().StringVar(&diet, "diet", "", "standard or high_protein_low_carb")
	return cmd
}

func newProfileDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				if err := a.profiles.Delete(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Profile deleted")
				return nil
			})
		},
	}
}
