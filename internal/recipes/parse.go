package recipes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
)

const ingredientSep = ";"

// ParseIngredient reads one ingredient written as
//
//	name; quantity[unit]; kcal; protein; lipid; carb
//
// Macro fields may be omitted. Decimal commas are accepted.
func ParseIngredient(line string) (model.Ingredient, error) {
	fields := strings.Split(line, ingredientSep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 2 || fields[0] == "" {
		return model.Ingredient{}, fmt.Errorf("ingredient %q: want name%s quantity", line, ingredientSep)
	}
	if len(fields) > 6 {
		return model.Ingredient{}, fmt.Errorf("ingredient %q: too many fields", line)
	}

	qty, unit, err := parseQuantity(fields[1])
	if err != nil {
		return model.Ingredient{}, fmt.Errorf("ingredient %q: %w", line, err)
	}

	var macros [4]float64
	for i, f := range fields[2:] {
		if f == "" {
			continue
		}
		if !numfmt.IsValidNumber(f) {
			return model.Ingredient{}, fmt.Errorf("ingredient %q: invalid number %q", line, f)
		}
		macros[i] = numfmt.ParseLocalFloat(f)
	}

	return model.Ingredient{
		Name:     fields[0],
		Quantity: qty,
		Unit:     unit,
		Macros:   model.Macros{Kcal: macros[0], ProteinG: macros[1], LipidG: macros[2], CarbG: macros[3]},
	}, nil
}

// parseQuantity splits "150g" or "1,5 l" into a value and a unit.
func parseQuantity(s string) (float64, string, error) {
	if !numfmt.IsValidNumber(s) {
		return 0, "", fmt.Errorf("invalid quantity %q", s)
	}
	v := numfmt.ParseLocalFloat(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != ',' && r != '-' && r != '+'
	})
	unit := ""
	if i >= 0 {
		unit = strings.TrimSpace(s[i:])
	}
	return v, unit, nil
}

// ParseIngredients parses one ingredient per non-blank line.
func ParseIngredients(text string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ing, err := ParseIngredient(line)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// FormatIngredient is the inverse of ParseIngredient.
func FormatIngredient(ing model.Ingredient) string {
	f := func(v float64) string { return strconv.FormatFloat(numfmt.RoundTo(v, 1), 'f', -1, 64) }
	qty := f(ing.Quantity) + ing.Unit
	return strings.Join([]string{ing.Name, qty, f(ing.Macros.Kcal), f(ing.Macros.ProteinG), f(ing.Macros.LipidG), f(ing.Macros.CarbG)}, ingredientSep+" ")
}
