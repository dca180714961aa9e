package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/recipes"
)

func newRecipeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage custom recipes",
	}
	cmd.AddCommand(
		newRecipeListCmd(opts),
		newRecipeSearchCmd(opts),
		newRecipeShowCmd(opts),
		newRecipeAddCmd(opts),
		newRecipeDeleteCmd(opts),
	)
	return cmd
}

func (a *app) printRecipes(list []model.Recipe) {
	fmt.Fprintln(a.out, "ID\tTYPE\tNAME\tKCAL\tP\tL\tC")
	for _, r := range list {
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, r.Name, a.num(r.Kcal, 0), a.num(r.ProteinG, 1), a.num(r.LipidG, 1), a.num(r.CarbG, 1))
	}
}

func newRecipeListCmd(opts *rootOptions) *cobra.Command {
	var slotName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				list := a.book.All()
				if slotName != "" {
					slot, err := model.ParseSlot(slotName)
					if err != nil {
						return err
					}
					list = a.book.ByType(slot)
				}
				a.printRecipes(list)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&slotName, "type", "", "Only recipes of this meal type")
	return cmd
}

func newRecipeSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search recipes by name or ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				a.printRecipes(a.book.Search(args[0]))
				return nil
			})
		},
	}
}

func newRecipeShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show recipe details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				r, err := a.book.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "ID: %s\nName: %s\nType: %s\nMacros: %s\n", r.ID, r.Name, r.Type.Label(), a.macros(r.Macros))
				fmt.Fprintf(a.out, "Created: %s\nUpdated: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.UpdatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintln(a.out, "Ingredients:")
				for _, ing := range r.Ingredients {
					fmt.Fprintf(a.out, "  %s\n", recipes.FormatIngredient(ing))
				}
				return nil
			})
		},
	}
}

func newRecipeAddCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		slotName    string
		ingredients []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recipe",
		Example: `  eprotocol recipe add --name "Salmon bowl" --type lunch \
    --ingredient "Salmon; 150g; 312; 30; 21; 0" \
    --ingredient "Rice; 80g; 280; 6; 1; 62"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ings []model.Ingredient
			for _, line := range ingredients {
				ing, err := recipes.ParseIngredient(line)
				if err != nil {
					return err
				}
				ings = append(ings, ing)
			}
			return opts.withApp(cmd, func(a *app) error {
				d := recipes.NewDraft(name, model.Slot(slotName), ings)
				if err := recipes.ValidateDraft(d); err != nil {
					return err
				}
				r, err := a.book.Create(d)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Created recipe %s (%s kcal)\n", r.ID, a.num(r.Kcal, 0))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Recipe name")
	cmd.Flags().StringVar(&slotName, "type", "", "Meal type: breakfast, lunch, dinner or snack")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, `Ingredient "name; quantity; kcal; protein; lipid; carb" (repeatable)`)
	return cmd
}

func newRecipeDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				if err := a.book.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted recipe %s\n", args[0])
				return nil
			})
		},
	}
}
