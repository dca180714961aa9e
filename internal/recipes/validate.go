package recipes

import (
	"strings"

	"github.com/sadopc/eprotocol/internal/model"
)

// SumIngredients adds up the ingredient macros. Ingredient macros are for
// the entered quantity, so the sum is the recipe total.
func SumIngredients(ings []model.Ingredient) model.Macros {
	var total model.Macros
	for _, ing := range ings {
		total = total.Add(ing.Macros)
	}
	return total
}

func usable(ing model.Ingredient) bool {
	return strings.TrimSpace(ing.Name) != "" && ing.Quantity > 0
}

func hasMacros(m model.Macros) bool {
	return m.Kcal > 0 || m.ProteinG > 0 || m.LipidG > 0 || m.CarbG > 0
}

// CleanIngredients drops rows without a name or quantity and trims names.
func CleanIngredients(ings []model.Ingredient) []model.Ingredient {
	out := []model.Ingredient{}
	for _, ing := range ings {
		if !usable(ing) {
			continue
		}
		ing.Name = strings.TrimSpace(ing.Name)
		out = append(out, ing)
	}
	return out
}

// ValidateDraft checks a recipe form: a name, a meal type, at least one
// named ingredient with a positive quantity, and macros on at least one of
// them.
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &model.ValidationError{Field: "name", Message: "is required"}
	}
	if !d.Type.IsMealSlot() {
		return &model.ValidationError{Field: "mealType", Message: "must be breakfast, lunch, dinner or snack"}
	}

	valid := CleanIngredients(d.Ingredients)
	if len(valid) == 0 {
		return &model.ValidationError{Field: "ingredients", Message: "at least one ingredient with a name and quantity is required"}
	}
	for _, ing := range valid {
		if hasMacros(ing.Macros) {
			return nil
		}
	}
	return &model.ValidationError{Field: "macros", Message: "at least one ingredient needs macros"}
}

// NewDraft builds a draft from form input: ingredients are cleaned and the
// macros summed.
func NewDraft(name string, slot model.Slot, ings []model.Ingredient) Draft {
	clean := CleanIngredients(ings)
	return Draft{
		Name:        strings.TrimSpace(name),
		Type:        slot,
		Macros:      SumIngredients(clean),
		Ingredients: clean,
	}
}
