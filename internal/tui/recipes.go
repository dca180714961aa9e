package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/recipes"
)

// typeFilters cycles with the filter key; "" shows every type.
var typeFilters = append([]model.Slot{""}, model.MealSlots...)

type recipesModel struct {
	book   *recipes.Book
	prefs  *prefs
	width  int
	height int

	list   []model.Recipe
	cursor int
	filter int
	query  string
	detail bool

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "search"
	editingID  string

	// Form field pointers (survive value copies)
	formName        *string
	formSlot        *string
	formIngredients *string
	formQuery       *string
}

func newRecipesModel(b *recipes.Book, p *prefs) recipesModel {
	name, slot, ings, query := "", string(model.SlotLunch), "", ""
	return recipesModel{
		book:            b,
		prefs:           p,
		formName:        &name,
		formSlot:        &slot,
		formIngredients: &ings,
		formQuery:       &query,
	}
}

func (r *recipesModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type recipesDataMsg struct {
	list []model.Recipe
}

func (r recipesModel) refresh() tea.Cmd {
	book, query, slot := r.book, r.query, typeFilters[r.filter]
	return func() tea.Msg {
		list := book.All()
		if query != "" {
			list = book.Search(query)
		}
		if slot != "" {
			filtered := list[:0:0]
			for _, rec := range list {
				if slot.Accepts(rec) {
					filtered = append(filtered, rec)
				}
			}
			list = filtered
		}
		return recipesDataMsg{list: list}
	}
}

func (r recipesModel) selected() (model.Recipe, bool) {
	if r.cursor < 0 || r.cursor >= len(r.list) {
		return model.Recipe{}, false
	}
	return r.list[r.cursor], true
}

func (r recipesModel) update(msg tea.Msg) (recipesModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case recipesDataMsg:
		r.list = msg.list
		if r.cursor >= len(r.list) {
			r.cursor = max(0, len(r.list)-1)
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.list)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Enter):
			r.detail = !r.detail
		case key.Matches(msg, keys.Back):
			r.detail = false
			if r.query != "" {
				r.query = ""
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Filter):
			r.filter = (r.filter + 1) % len(typeFilters)
			r.cursor = 0
			return r, r.refresh()
		case key.Matches(msg, keys.Search):
			return r.showSearchForm()
		case key.Matches(msg, keys.New):
			return r.showRecipeForm(nil)
		case key.Matches(msg, keys.Edit):
			if rec, ok := r.selected(); ok {
				return r.showRecipeForm(&rec)
			}
		case key.Matches(msg, keys.Delete):
			if rec, ok := r.selected(); ok {
				if err := r.book.Delete(rec.ID); err != nil {
					return r, errCmd("Delete failed", err)
				}
				r.detail = false
				return r, tea.Batch(r.refresh(), statusCmd("Deleted "+rec.Name))
			}
		}
	}
	return r, nil
}

func validateIngredients(s string) error {
	ings, err := recipes.ParseIngredients(s)
	if err != nil {
		return err
	}
	if len(ings) == 0 {
		return errors.New("at least one ingredient is required")
	}
	return nil
}

func (r recipesModel) showRecipeForm(rec *model.Recipe) (recipesModel, tea.Cmd) {
	*r.formName = ""
	*r.formSlot = string(model.SlotLunch)
	*r.formIngredients = ""
	r.formType = "new"
	r.editingID = ""
	if rec != nil {
		*r.formName = rec.Name
		*r.formSlot = string(rec.Type)
		lines := make([]string, len(rec.Ingredients))
		for i, ing := range rec.Ingredients {
			lines[i] = recipes.FormatIngredient(ing)
		}
		*r.formIngredients = strings.Join(lines, "\n")
		r.formType = "edit"
		r.editingID = rec.ID
	}

	slotOptions := make([]huh.Option[string], len(model.MealSlots))
	for i, s := range model.MealSlots {
		slotOptions[i] = huh.NewOption(s.Label(), string(s))
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(r.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Meal type").Options(slotOptions...).Value(r.formSlot),
			huh.NewText().Title("Ingredients").
				Description("One per line: name; quantity; kcal; protein; lipid; carb").
				Lines(6).
				Value(r.formIngredients).
				Validate(validateIngredients),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r recipesModel) showSearchForm() (recipesModel, tea.Cmd) {
	*r.formQuery = r.query
	r.formType = "search"
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Search name or ingredient").Value(r.formQuery),
		),
	).WithShowHelp(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r recipesModel) updateForm(msg tea.Msg) (recipesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		switch r.formType {
		case "search":
			r.query = strings.TrimSpace(*r.formQuery)
			r.cursor = 0
			return r, r.refresh()
		default:
			return r, tea.Batch(r.saveRecipe(), r.refresh())
		}
	}

	return r, cmd
}

func (r recipesModel) saveRecipe() tea.Cmd {
	ings, err := recipes.ParseIngredients(*r.formIngredients)
	if err != nil {
		return errCmd("Invalid ingredients", err)
	}
	draft := recipes.NewDraft(*r.formName, model.Slot(*r.formSlot), ings)
	if err := recipes.ValidateDraft(draft); err != nil {
		return errCmd("Recipe not saved", err)
	}

	if r.formType == "edit" {
		_, err = r.book.Update(r.editingID, recipes.Patch{
			Name:        &draft.Name,
			Type:        &draft.Type,
			Macros:      &draft.Macros,
			Ingredients: draft.Ingredients,
		})
		if err != nil {
			return errCmd("Update failed", err)
		}
		return statusCmd("Updated " + draft.Name)
	}

	if _, err := r.book.Create(draft); err != nil {
		return errCmd("Create failed", err)
	}
	return statusCmd("Created " + draft.Name)
}

func (r recipesModel) view() string {
	w := r.width - 4
	if r.formActive && r.form != nil {
		title := "New Recipe"
		switch r.formType {
		case "edit":
			title = "Edit Recipe"
		case "search":
			title = "Search Recipes"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", r.form.View())
		return panelStyle.Width(w).Render(content)
	}

	list := r.renderList(w)
	if r.detail {
		if rec, ok := r.selected(); ok {
			return lipgloss.JoinVertical(lipgloss.Left, list, r.renderDetail(rec, w))
		}
	}
	return list
}

func (r recipesModel) renderList(w int) string {
	filterLabel := "all types"
	if slot := typeFilters[r.filter]; slot != "" {
		filterLabel = slot.Label()
	}
	header := titleStyle.Render("Recipes") + mutedStyle.Render(fmt.Sprintf("  %d shown · %s", len(r.list), filterLabel))
	if r.query != "" {
		header += highlightStyle.Render(fmt.Sprintf("  search: %q", r.query))
	}

	if len(r.list) == 0 {
		hint := "No recipes yet. Press n to create one."
		if r.query != "" || r.filter != 0 {
			hint = "No recipe matches. esc: clear search  f: change filter"
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render(hint)))
	}

	nameWidth := max(12, w-50)
	rows := []string{header, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-*s %-10s %8s %7s %7s %7s", nameWidth, "Name", "Type", "kcal", "P", "L", "C")))
	for i, rec := range r.list {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-*s %-10s %8s %7s %7s %7s",
			cursor, nameWidth, truncate(rec.Name, nameWidth), rec.Type,
			r.prefs.num(rec.Kcal, 0), r.prefs.num(rec.ProteinG, 1), r.prefs.num(rec.LipidG, 1), r.prefs.num(rec.CarbG, 1))))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  u: edit  d: delete  /: search  f: filter  enter: details"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (r recipesModel) renderDetail(rec model.Recipe, w int) string {
	rows := []string{
		titleStyle.Render(rec.Name) + mutedStyle.Render("  "+rec.Type.Label()),
		highlightStyle.Render(r.prefs.macros(rec.Macros)),
		"",
	}
	for _, ing := range rec.Ingredients {
		rows = append(rows, fmt.Sprintf("  • %s %s%s  %s",
			ing.Name, r.prefs.num(ing.Quantity, 1), ing.Unit, mutedStyle.Render(r.prefs.macros(ing.Macros))))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  updated %s", rec.UpdatedAt.Local().Format("2006-01-02 15:04"))))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
