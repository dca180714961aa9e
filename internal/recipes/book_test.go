package recipes

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sadopc/eprotocol/internal/export"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/store"
)

// fakeClock advances one second per call.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestBook(t *testing.T) (*Book, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := &fakeClock{t: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
	b, err := NewBook(s, zaptest.NewLogger(t), WithClock(clock.now))
	if err != nil {
		t.Fatalf("new book: %v", err)
	}
	return b, s
}

func oatsDraft() Draft {
	return NewDraft("Overnight oats", model.SlotBreakfast, []model.Ingredient{
		{Name: "Oats", Quantity: 60, Unit: "g", Macros: model.Macros{Kcal: 230, ProteinG: 8, LipidG: 4, CarbG: 40}},
		{Name: "Skyr", Quantity: 150, Unit: "g", Macros: model.Macros{Kcal: 180, ProteinG: 16, LipidG: 5, CarbG: 18}},
	})
}

func bowlDraft() Draft {
	return NewDraft("Tofu bowl", model.SlotLunch, []model.Ingredient{
		{Name: "Tofu", Quantity: 150, Unit: "g", Macros: model.Macros{Kcal: 210, ProteinG: 22, LipidG: 12, CarbG: 3}},
		{Name: "Brown rice", Quantity: 70, Unit: "g", Macros: model.Macros{Kcal: 250, ProteinG: 5, LipidG: 2, CarbG: 52}},
	})
}

// ============================================================
// CRUD
// ============================================================

func TestCreateAndGet(t *testing.T) {
	b, s := newTestBook(t)
	r, err := b.Create(oatsDraft())
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Fatalf("createdAt %v != updatedAt %v", r.CreatedAt, r.UpdatedAt)
	}
	for _, ing := range r.Ingredients {
		if ing.ID == "" {
			t.Fatal("ingredient without id")
		}
	}

	got, err := b.Get(r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, r) {
		t.Fatalf("cached %+v, created %+v", got, r)
	}

	stored, err := s.GetRecipe(r.ID)
	if err != nil || stored == nil {
		t.Fatalf("recipe not persisted: %v", err)
	}
	if !stored.CreatedAt.Equal(stored.UpdatedAt) {
		t.Fatal("persisted timestamps differ")
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1", b.Len())
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	b, _ := newTestBook(t)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		r, err := b.Create(bowlDraft())
		if err != nil {
			t.Fatal(err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestCreateWithIDGenerator(t *testing.T) {
	s, _ := store.NewMemory()
	t.Cleanup(func() { s.Close() })
	n := 0
	b, err := NewBook(s, nil, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	if err != nil {
		t.Fatal(err)
	}
	r, _ := b.Create(oatsDraft())
	if r.ID != "id-1" {
		t.Fatalf("id = %q", r.ID)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	b, _ := newTestBook(t)
	d := oatsDraft()
	d.Type = model.SlotShake
	_, err := b.Create(d)
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "mealType" {
		t.Fatalf("expected mealType validation error, got %v", err)
	}

	d = oatsDraft()
	d.Name = "  "
	if _, err := b.Create(d); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if b.Len() != 0 {
		t.Fatal("invalid recipe was stored")
	}
}

func TestUpdate(t *testing.T) {
	b, s := newTestBook(t)
	r, _ := b.Create(oatsDraft())

	name := "Protein oats"
	macros := model.Macros{Kcal: 500, ProteinG: 40, LipidG: 9, CarbG: 60}
	u, err := b.Update(r.ID, Patch{Name: &name, Macros: &macros})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != r.ID {
		t.Fatal("id changed")
	}
	if !u.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("createdAt changed: %v -> %v", r.CreatedAt, u.CreatedAt)
	}
	if !u.UpdatedAt.After(r.UpdatedAt) {
		t.Fatalf("updatedAt did not advance: %v -> %v", r.UpdatedAt, u.UpdatedAt)
	}
	if u.Name != name || u.Macros != macros {
		t.Fatalf("fields not applied: %+v", u)
	}
	if !reflect.DeepEqual(u.Ingredients, r.Ingredients) {
		t.Fatal("ingredients should be kept when not patched")
	}

	stored, _ := s.GetRecipe(r.ID)
	if stored.Name != name || !stored.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("update not persisted: %+v", stored)
	}
	cached, _ := b.Get(r.ID)
	if cached.Name != name {
		t.Fatal("cache not refreshed")
	}
}

func TestUpdateUpdatedAtAdvancesWithFrozenClock(t *testing.T) {
	s, _ := store.NewMemory()
	t.Cleanup(func() { s.Close() })
	frozen := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	b, _ := NewBook(s, nil, WithClock(func() time.Time { return frozen }))

	r, _ := b.Create(oatsDraft())
	name := "Renamed"
	u, err := b.Update(r.ID, Patch{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if !u.UpdatedAt.After(r.UpdatedAt) {
		t.Fatal("updatedAt must advance even when the clock does not")
	}
}

func TestUpdateType(t *testing.T) {
	b, _ := newTestBook(t)
	r, _ := b.Create(bowlDraft())
	dinner := model.SlotDinner
	if _, err := b.Update(r.ID, Patch{Type: &dinner}); err != nil {
		t.Fatal(err)
	}
	if len(b.ByType(model.SlotDinner)) != 1 || len(b.ByType(model.SlotLunch)) != 0 {
		t.Fatal("type change not reflected in filters")
	}

	shake := model.SlotShake
	if _, err := b.Update(r.ID, Patch{Type: &shake}); err == nil {
		t.Fatal("expected error for shake type")
	}
}

func TestUpdateNotFound(t *testing.T) {
	b, _ := newTestBook(t)
	name := "x"
	_, err := b.Update("missing", Patch{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	b, _ := newTestBook(t)
	if _, err := b.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	b, s := newTestBook(t)
	r, _ := b.Create(oatsDraft())
	if err := b.Delete(r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("recipe still cached")
	}
	if stored, _ := s.GetRecipe(r.ID); stored != nil {
		t.Fatal("recipe still stored")
	}
	if err := b.Delete(r.ID); err != nil {
		t.Fatalf("deleting an absent id should succeed: %v", err)
	}
}

func TestBookLoadsExistingRecipes(t *testing.T) {
	b, s := newTestBook(t)
	b.Create(oatsDraft())
	b.Create(bowlDraft())

	other, err := NewBook(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if other.Len() != 2 {
		t.Fatalf("len = %d, want 2", other.Len())
	}
}

// ============================================================
// Search and filter
// ============================================================

func TestSearch(t *testing.T) {
	b, _ := newTestBook(t)
	b.Create(oatsDraft())
	b.Create(bowlDraft())

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Overnight oats", "Tofu bowl"}},
		{"   ", []string{"Overnight oats", "Tofu bowl"}},
		{"OATS", []string{"Overnight oats"}},
		{"skyr", []string{"Overnight oats"}},
		{"rice", []string{"Tofu bowl"}},
		{"o", []string{"Overnight oats", "Tofu bowl"}},
		{"pizza", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, r := range b.Search(tt.query) {
			got = append(got, r.Name)
		}
		sort.Strings(got)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestByType(t *testing.T) {
	b, _ := newTestBook(t)
	b.Create(oatsDraft())
	b.Create(bowlDraft())
	b.Create(bowlDraft())

	if n := len(b.ByType(model.SlotLunch)); n != 2 {
		t.Fatalf("lunch = %d, want 2", n)
	}
	if n := len(b.ByType(model.SlotBreakfast)); n != 1 {
		t.Fatalf("breakfast = %d, want 1", n)
	}
	if n := len(b.ByType(model.SlotShake)); n != 0 {
		t.Fatalf("shake = %d, want 0", n)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	b, _ := newTestBook(t)
	b.Create(oatsDraft())
	all := b.All()
	all[0].Name = "mutated"
	if r := b.All()[0]; r.Name == "mutated" {
		t.Fatal("All should not expose the cache")
	}
}

// ============================================================
// Export / import
// ============================================================

func TestExportImportRoundTrip(t *testing.T) {
	b, _ := newTestBook(t)
	b.Create(oatsDraft())
	b.Create(bowlDraft())
	before := b.All()

	snap := b.Export(export.Metadata{ClientInfo: "test", AppVersion: "dev"})
	if len(snap.Recipes) != 2 || snap.Version != export.SnapshotVersion {
		t.Fatalf("snapshot = %+v", snap)
	}

	n, err := b.Import(snap)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}
	if !reflect.DeepEqual(b.All(), before) {
		t.Fatalf("round trip changed the book:\n%+v\n%+v", b.All(), before)
	}

	// Again, through the file format.
	path := t.TempDir() + "/recipes.json"
	if err := export.WriteSnapshot(snap, path); err != nil {
		t.Fatal(err)
	}
	parsed, err := export.ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Import(parsed); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.All(), before) {
		t.Fatal("file round trip changed the book")
	}
}

func TestImportIntoEmptyBook(t *testing.T) {
	src, _ := newTestBook(t)
	src.Create(oatsDraft())
	snap := src.Export(export.Metadata{})

	dst, _ := newTestBook(t)
	if _, err := dst.Import(snap); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dst.All(), src.All()) {
		t.Fatal("imported book differs from source")
	}
}

func TestImportOverwritesByID(t *testing.T) {
	b, _ := newTestBook(t)
	r, _ := b.Create(oatsDraft())
	snap := b.Export(export.Metadata{})
	snap.Recipes[0].Name = "Imported oats"

	if _, err := b.Import(snap); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1", b.Len())
	}
	got, _ := b.Get(r.ID)
	if got.Name != "Imported oats" {
		t.Fatalf("name = %q", got.Name)
	}
}

func TestImportFillsMissingFields(t *testing.T) {
	b, _ := newTestBook(t)
	snap := export.Snapshot{Recipes: []model.Recipe{{Name: "Bare", Type: model.SlotSnack}}}
	if _, err := b.Import(snap); err != nil {
		t.Fatal(err)
	}
	all := b.All()
	if len(all) != 1 || all[0].ID == "" || all[0].CreatedAt.IsZero() {
		t.Fatalf("missing fields not filled: %+v", all)
	}
}

func TestImportInvalidSnapshot(t *testing.T) {
	b, _ := newTestBook(t)
	_, err := b.Import(export.Snapshot{Version: "1.0"})
	if !errors.Is(err, export.ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestImportRejectsUnknownMealType(t *testing.T) {
	for _, slot := range []model.Slot{model.SlotShake, "brunch", ""} {
		b, _ := newTestBook(t)
		snap := export.Snapshot{Recipes: []model.Recipe{
			{Name: "Fine", Type: model.SlotLunch},
			{Name: "Odd", Type: slot},
		}}
		n, err := b.Import(snap)
		if !errors.Is(err, export.ErrInvalidSnapshot) {
			t.Fatalf("type %q: expected ErrInvalidSnapshot, got %v", slot, err)
		}
		var verr *model.ValidationError
		if !errors.As(err, &verr) || verr.Field != "mealType" {
			t.Fatalf("type %q: expected mealType validation error, got %v", slot, err)
		}
		if n != 0 || b.Len() != 0 {
			t.Fatalf("type %q: %d recipes written before rejection", slot, b.Len())
		}
	}
}

// failingRepo fails SaveRecipe after a number of successful calls.
type failingRepo struct {
	saved   []model.Recipe
	failAt  int
	deleted []string
}

func (f *failingRepo) SaveRecipe(r model.Recipe) error {
	if len(f.saved) == f.failAt {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *failingRepo) ListRecipes() ([]model.Recipe, error) {
	return append([]model.Recipe(nil), f.saved...), nil
}

func (f *failingRepo) DeleteRecipe(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestImportPartialFailureKeepsEarlierWrites(t *testing.T) {
	repo := &failingRepo{failAt: 2}
	b, err := NewBook(repo, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap := export.Snapshot{Recipes: []model.Recipe{
		{ID: "a", Name: "A", Type: model.SlotLunch},
		{ID: "b", Name: "B", Type: model.SlotLunch},
		{ID: "c", Name: "C", Type: model.SlotLunch},
	}}

	n, err := b.Import(snap)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 2 {
		t.Fatalf("imported %d, want 2", n)
	}
	if b.Len() != 2 {
		t.Fatalf("cache should hold the committed recipes, got %d", b.Len())
	}
}
