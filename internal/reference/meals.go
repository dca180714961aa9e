// Package reference holds the fixed tables the daily protocol is built from.
package reference

import "github.com/sadopc/eprotocol/internal/model"

// ReferenceObjectives are the daily targets of the reference plan, used when
// no personal profile exists.
var ReferenceObjectives = model.Objectives{
	Kcal:     1770,
	ProteinG: 102,
	LipidG:   49,
	CarbG:    230,
}

func dish(name string, kcal, p, l, g float64, ingredients string) model.Meal {
	return model.Meal{
		Key:         name,
		Name:        name,
		Macros:      model.Macros{Kcal: kcal, ProteinG: p, LipidG: l, CarbG: g},
		Ingredients: ingredients,
	}
}

// Dishes is the ordered lunch/dinner rotation.
var Dishes = []model.Meal{
	dish("Chicken tikka quinoa", 450, 42, 11, 44, ""),
	dish("Chicken tomato sauce", 445, 40, 9, 49, ""),
	dish("Omelette quinoa", 450, 26, 17, 46, ""),
	dish("Beef meatballs pasta", 465, 37, 12, 50, ""),
	dish("Salmon teriyaki rice", 470, 36, 15, 47, ""),
	dish("Scrambled eggs sweet potato", 455, 25, 18, 45, ""),
	dish("Chicken tomato sauce lentils", 445, 40, 9, 49, ""),
	dish("Turkey curry brown rice", 440, 38, 10, 48, ""),
	dish("Paprika chicken sweet potato", 455, 41, 13, 44, ""),
}

// DefaultSnackKey is the snack served when no snack is selected.
const DefaultSnackKey = "Fruit + almonds"

// Snacks is the ordered snack table.
var Snacks = []model.Meal{
	dish("Fruit + almonds", 80, 2, 4, 10, "1 fruit + 10 almonds"),
	dish("Pear + walnuts", 80, 2, 4, 10, "1 small pear (~130 g) + 10 walnut halves (~10 g)"),
	dish("Clementine + peanut butter", 80, 2, 4, 10, "1 clementine (~75 g) + 5 g peanut butter"),
	dish("Soy yogurt + flaxseed", 80, 2, 4, 10, "100 g plain soy yogurt + 5 g ground flaxseed"),
	dish("Carrot + almond butter", 80, 2, 4, 10, "1 mini carrot (~60 g) + 5 g almond butter"),
	dish("Kiwi + grated coconut", 80, 2, 4, 10, "1 kiwi (~70 g) + 5 g grated coconut"),
}

// Breakfasts holds the breakfast table; the first entry is the default.
var Breakfasts = []model.Meal{
	dish("Breakfast", 339, 20, 8.6, 42,
		"Rolled oats 40 g + sheep yogurt 150 g + chia 10 g + almond butter 5 g + ½ apple + cinnamon/lemon"),
}

// Shake is the fixed post-workout shake.
var Shake = dish("Clear Whey", 120, 25, 0, 0, "25 g peach tea + 300 ml water (post-workout)")

// Supplements is the fixed ordered daily supplement list.
var Supplements = []string{
	"Multivitamins (3 caps)",
	"Omega-3 (2 caps)",
	"Fat Burner (4 caps)",
	"Clear Whey (25 g)",
	"Creatine Creapure (5 g)",
	"Magnesium (2 caps)",
}

// SupplementMacros are the macros of one daily dose.
var SupplementMacros = map[string]model.Macros{
	"Clear Whey (25 g)":       {Kcal: 120, ProteinG: 25},
	"Creatine Creapure (5 g)": {},
	"Fat Burner (4 caps)":     {Kcal: 8, ProteinG: 0.4, LipidG: 0.1, CarbG: 0.7},
	"Multivitamins (3 caps)":  {Kcal: 7, ProteinG: 0.3, LipidG: 0.2, CarbG: 0.5},
	"Omega-3 (2 caps)":        {Kcal: 18, LipidG: 2},
	"Magnesium (2 caps)":      {Kcal: 4, ProteinG: 0.1, CarbG: 0.9},
}

// Table returns the static table for slot. The shake slot has a table of one.
func Table(slot model.Slot) []model.Meal {
	switch slot {
	case model.SlotBreakfast:
		return Breakfasts
	case model.SlotLunch, model.SlotDinner:
		return Dishes
	case model.SlotSnack:
		return Snacks
	case model.SlotShake:
		return []model.Meal{Shake}
	}
	return nil
}

// Lookup finds key in the static table of slot.
func Lookup(slot model.Slot, key string) (model.Meal, bool) {
	for _, m := range Table(slot) {
		if m.Key == key {
			return m, true
		}
	}
	return model.Meal{}, false
}
