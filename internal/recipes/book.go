// Package recipes manages user-authored recipes. Book keeps the only
// in-memory copy of the recipe set and refreshes it after every write.
package recipes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadopc/eprotocol/internal/export"
	"github.com/sadopc/eprotocol/internal/model"
)

var ErrNotFound = errors.New("recipe not found")

// Repository persists recipes. *store.Store implements it.
type Repository interface {
	SaveRecipe(r model.Recipe) error
	ListRecipes() ([]model.Recipe, error)
	DeleteRecipe(id string) error
}

// Draft is a recipe before it has an id and timestamps. Macros must already
// be the sum of the ingredient macros.
type Draft struct {
	Name        string
	Type        model.Slot
	Macros      model.Macros
	Ingredients []model.Ingredient
	IsDefault   bool
}

// Patch lists the fields to change. Nil fields are kept.
type Patch struct {
	Name        *string
	Type        *model.Slot
	Macros      *model.Macros
	Ingredients []model.Ingredient
}

type Option func(*Book)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Book) { b.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(b *Book) { b.newID = newID }
}

type Book struct {
	repo  Repository
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	cache []model.Recipe
}

// NewBook loads the recipe set from repo.
func NewBook(repo Repository, log *zap.Logger, opts ...Option) (*Book, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Book{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(b)
	}
	if err := b.Refresh(); err != nil {
		return nil, err
	}
	return b, nil
}

// Refresh reloads the cache from the repository.
func (b *Book) Refresh() error {
	list, err := b.repo.ListRecipes()
	if err != nil {
		return fmt.Errorf("load recipes: %w", err)
	}
	b.cache = list
	return nil
}

// All returns a copy of every recipe, ordered by name.
func (b *Book) All() []model.Recipe {
	return append([]model.Recipe(nil), b.cache...)
}

func (b *Book) Len() int {
	return len(b.cache)
}

func (b *Book) Get(id string) (model.Recipe, error) {
	for _, r := range b.cache {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Recipe{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
}

func (b *Book) timestamp() time.Time {
	return b.now().UTC()
}

func (b *Book) assignIngredientIDs(ings []model.Ingredient) []model.Ingredient {
	out := make([]model.Ingredient, len(ings))
	for i, ing := range ings {
		if ing.ID == "" {
			ing.ID = b.newID()
		}
		out[i] = ing
	}
	return out
}

// Create stores a new recipe with a fresh id. CreatedAt and UpdatedAt are
// equal on the returned recipe.
func (b *Book) Create(d Draft) (model.Recipe, error) {
	if !d.Type.IsMealSlot() {
		return model.Recipe{}, &model.ValidationError{Field: "mealType", Message: fmt.Sprintf("%q is not a meal type", d.Type)}
	}
	if strings.TrimSpace(d.Name) == "" {
		return model.Recipe{}, &model.ValidationError{Field: "name", Message: "is required"}
	}

	now := b.timestamp()
	r := model.Recipe{
		ID:          b.newID(),
		Name:        strings.TrimSpace(d.Name),
		Type:        d.Type,
		Macros:      d.Macros,
		Ingredients: b.assignIngredientIDs(d.Ingredients),
		CreatedAt:   now,
		UpdatedAt:   now,
		IsDefault:   d.IsDefault,
	}
	if err := b.repo.SaveRecipe(r); err != nil {
		return model.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}
	b.log.Info("recipe created", zap.String("id", r.ID), zap.String("name", r.Name))
	return r, b.Refresh()
}

// Update applies p to the recipe with id. The id and CreatedAt never change.
func (b *Book) Update(id string, p Patch) (model.Recipe, error) {
	r, err := b.Get(id)
	if err != nil {
		return model.Recipe{}, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return model.Recipe{}, &model.ValidationError{Field: "name", Message: "is required"}
		}
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		if !p.Type.IsMealSlot() {
			return model.Recipe{}, &model.ValidationError{Field: "mealType", Message: fmt.Sprintf("%q is not a meal type", *p.Type)}
		}
		r.Type = *p.Type
	}
	if p.Macros != nil {
		r.Macros = *p.Macros
	}
	if p.Ingredients != nil {
		r.Ingredients = b.assignIngredientIDs(p.Ingredients)
	}

	now := b.timestamp()
	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Nanosecond)
	}
	r.UpdatedAt = now

	if err := b.repo.SaveRecipe(r); err != nil {
		return model.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	b.log.Info("recipe updated", zap.String("id", r.ID))
	return r, b.Refresh()
}

// Delete removes the recipe. Unknown ids are ignored.
func (b *Book) Delete(id string) error {
	if err := b.repo.DeleteRecipe(id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	b.log.Info("recipe deleted", zap.String("id", id))
	return b.Refresh()
}

// Search matches query, case-insensitively, against recipe names and
// ingredient names. A blank query returns every recipe.
func (b *Book) Search(query string) []model.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return b.All()
	}
	var out []model.Recipe
	for _, r := range b.cache {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r model.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), q) {
			return true
		}
	}
	return false
}

// ByType returns the recipes of a meal slot.
func (b *Book) ByType(slot model.Slot) []model.Recipe {
	var out []model.Recipe
	for _, r := range b.cache {
		if slot.Accepts(r) {
			out = append(out, r)
		}
	}
	return out
}

// Export snapshots the whole book.
func (b *Book) Export(meta export.Metadata) export.Snapshot {
	return export.NewSnapshot(b.All(), meta, b.timestamp())
}

// Import upserts every recipe of s by id. Validation happens before any
// write; a failing write leaves the recipes already saved in place. It
// returns the number of recipes written.
func (b *Book) Import(s export.Snapshot) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	// Reject the whole snapshot when any recipe lacks a meal slot.
	for i, r := range s.Recipes {
		if !r.Type.IsMealSlot() {
			verr := &model.ValidationError{Field: "mealType", Message: fmt.Sprintf("%q is not a meal slot", r.Type)}
			return 0, fmt.Errorf("%w: recipe %d (%s): %w", export.ErrInvalidSnapshot, i, r.Name, verr)
		}
	}

	n := 0
	for _, r := range s.Recipes {
		if r.ID == "" {
			r.ID = b.newID()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = b.timestamp()
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = r.CreatedAt
		}
		r.Ingredients = b.assignIngredientIDs(r.Ingredients)
		if err := b.repo.SaveRecipe(r); err != nil {
			b.log.Warn("import stopped", zap.String("id", r.ID), zap.Int("imported", n), zap.Error(err))
			if rerr := b.Refresh(); rerr != nil {
				b.log.Error("refresh after failed import", zap.Error(rerr))
			}
			return n, fmt.Errorf("import recipe %s: %w", r.ID, err)
		}
		n++
	}
	b.log.Info("recipes imported", zap.Int("count", n))
	return n, b.Refresh()
}
