package store

import (
	"database/sql"
	"fmt"

	"github.com/sadopc/eprotocol/internal/model"
)

const recipeColumns = `id, name, meal_type, kcal, protein_g, lipid_g, carb_g, is_default, created_at, updated_at`

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	r := &model.Recipe{}
	var mealType, createdAt, updatedAt string
	var isDefault int
	err := row.Scan(&r.ID, &r.Name, &mealType, &r.Kcal, &r.ProteinG, &r.LipidG, &r.CarbG,
		&isDefault, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	r.Type = model.Slot(mealType)
	r.IsDefault = isDefault == 1
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	r.Ingredients = []model.Ingredient{}
	return r, nil
}

// SaveRecipe inserts r or replaces the recipe with the same id, ingredients
// included.
func (s *Store) SaveRecipe(r model.Recipe) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			meal_type = excluded.meal_type,
			kcal = excluded.kcal,
			protein_g = excluded.protein_g,
			lipid_g = excluded.lipid_g,
			carb_g = excluded.carb_g,
			is_default = excluded.is_default,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		r.ID, r.Name, string(r.Type), r.Kcal, r.ProteinG, r.LipidG, r.CarbG,
		boolInt(r.IsDefault), formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save recipe %s: %w", r.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear ingredients of %s: %w", r.ID, err)
	}
	for i, ing := range r.Ingredients {
		_, err := tx.Exec(`
			INSERT INTO recipe_ingredients
				(recipe_id, position, id, name, quantity, unit, kcal, protein_g, lipid_g, carb_g)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, ing.ID, ing.Name, ing.Quantity, ing.Unit,
			ing.Macros.Kcal, ing.Macros.ProteinG, ing.Macros.LipidG, ing.Macros.CarbG,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient %d of %s: %w", i, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recipe %s: %w", r.ID, err)
	}
	return nil
}

// GetRecipe returns the recipe with id, or nil when none exists.
func (s *Store) GetRecipe(id string) (*model.Recipe, error) {
	r, err := scanRecipe(s.db.QueryRow(`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", id, err)
	}

	ings, err := s.ingredients(id)
	if err != nil {
		return nil, err
	}
	r.Ingredients = ings[id]
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	return r, nil
}

// ListRecipes returns every recipe ordered by name.
func (s *Store) ListRecipes() ([]model.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeColumns + ` FROM recipes ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	ings, err := s.ingredients("")
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if list, ok := ings[recipes[i].ID]; ok {
			recipes[i].Ingredients = list
		}
	}
	return recipes, nil
}

// ingredients loads ingredient rows grouped by recipe id, for one recipe or
// for all of them when recipeID is empty.
func (s *Store) ingredients(recipeID string) (map[string][]model.Ingredient, error) {
	query := `SELECT recipe_id, id, name, quantity, unit, kcal, protein_g, lipid_g, carb_g
		FROM recipe_ingredients`
	var args []any
	if recipeID != "" {
		query += ` WHERE recipe_id = ?`
		args = append(args, recipeID)
	}
	query += ` ORDER BY recipe_id, position`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	out := map[string][]model.Ingredient{}
	for rows.Next() {
		var rid string
		var ing model.Ingredient
		if err := rows.Scan(&rid, &ing.ID, &ing.Name, &ing.Quantity, &ing.Unit,
			&ing.Macros.Kcal, &ing.Macros.ProteinG, &ing.Macros.LipidG, &ing.Macros.CarbG); err != nil {
			return nil, err
		}
		out[rid] = append(out[rid], ing)
	}
	return out, rows.Err()
}

// DeleteRecipe removes the recipe and its ingredients. Deleting an unknown id
// is not an error.
func (s *Store) DeleteRecipe(id string) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	return nil
}
