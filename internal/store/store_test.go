package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/sadopc/eprotocol/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecipe(id string) model.Recipe {
	now := time.Date(2025, 9, 3, 12, 0, 0, 123456789, time.UTC)
	return model.Recipe{
		ID:     id,
		Name:   "Salmon rice",
		Type:   model.SlotDinner,
		Macros: model.Macros{Kcal: 620, ProteinG: 38, LipidG: 22, CarbG: 64},
		Ingredients: []model.Ingredient{
			{ID: "a", Name: "Salmon", Quantity: 150, Unit: "g", Macros: model.Macros{Kcal: 300, ProteinG: 30, LipidG: 20}},
			{ID: "b", Name: "Rice", Quantity: 80, Unit: "g", Macros: model.Macros{Kcal: 290, ProteinG: 6, LipidG: 1, CarbG: 62}},
			{ID: "c", Name: "Soy sauce", Quantity: 1, Unit: "tbsp", Macros: model.Macros{Kcal: 30, ProteinG: 2, LipidG: 1, CarbG: 2}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/eprotocol.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDayProgress(model.NewDayProgress("2025-09-01")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migrations do not rerun.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	p, err := s2.GetDayProgress("2025-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("progress lost after reopen")
	}
}

func TestNewInvalidPath(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := dir + "/file"
	s, err := New(blocker)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := New(blocker + "/nested/eprotocol.db"); err == nil {
		t.Fatal("expected error when the parent is a file")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrationFromV1(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE user_profile`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`PRAGMA user_version = 1`); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRecipe(testRecipe("keep")); err != nil {
		t.Fatal(err)
	}

	if err := s.migrate(); err != nil {
		t.Fatalf("migrate from v1: %v", err)
	}
	if p, err := s.GetProfile(model.ProfileID); err != nil || p != nil {
		t.Fatalf("profile table not usable after upgrade: %v, %v", p, err)
	}
	if r, _ := s.GetRecipe("keep"); r == nil {
		t.Fatal("v1 data lost during upgrade")
	}
}

// ============================================================
// Day progress
// ============================================================

func TestGetDayProgressMissing(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetDayProgress("2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestSaveAndGetDayProgress(t *testing.T) {
	s := newTestStore(t)
	in := model.DayProgress{
		Date:             "2025-09-05",
		Breakfast:        true,
		Dinner:           true,
		Activity:         true,
		Supplements:      []bool{true, false, false, true, false, false},
		SelectedMeals:    model.MealSelections{model.SlotLunch: "Chicken curry rice"},
		SelectedActivity: "Yoga",
	}
	if err := s.SaveDayProgress(in); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDayProgress(in.Date)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*got, in) {
		t.Fatalf("got %+v, want %+v", *got, in)
	}
}

func TestSaveDayProgressReplaces(t *testing.T) {
	s := newTestStore(t)
	first := model.NewDayProgress("2025-09-05")
	first.Lunch = true
	first.SelectedMeals[model.SlotDinner] = "x"
	s.SaveDayProgress(first)

	second := model.NewDayProgress("2025-09-05")
	second.Snack = true
	if err := s.SaveDayProgress(second); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetDayProgress("2025-09-05")
	if got.Lunch || !got.Snack {
		t.Fatalf("save should fully replace: %+v", got)
	}
	if len(got.SelectedMeals) != 0 {
		t.Fatalf("selections should be replaced: %v", got.SelectedMeals)
	}
}

func TestSaveDayProgressEmptyDate(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDayProgress(model.DayProgress{}); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestSaveDayProgressNilSlices(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDayProgress(model.DayProgress{Date: "2025-09-09"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDayProgress("2025-09-09")
	if got.Supplements == nil || got.SelectedMeals == nil {
		t.Fatalf("expected empty, non-nil collections: %+v", got)
	}
}

func TestUpdateSelectedMealsCreatesRecord(t *testing.T) {
	s := newTestStore(t)
	p, err := s.UpdateSelectedMeals("2025-09-10", model.MealSelections{model.SlotLunch: "Omelette"})
	if err != nil {
		t.Fatal(err)
	}
	if p.SelectedMeals[model.SlotLunch] != "Omelette" {
		t.Fatalf("returned selection = %v", p.SelectedMeals)
	}

	got, _ := s.GetDayProgress("2025-09-10")
	if got == nil {
		t.Fatal("record not created")
	}
	if got.CompletedMeals() != 0 || got.Activity || got.CompletedSupplements() != 0 {
		t.Fatalf("new record should have nothing completed: %+v", got)
	}
	if len(got.Supplements) != 0 {
		t.Fatalf("new record should have no supplements yet: %v", got.Supplements)
	}
	if got.SelectedMeals[model.SlotLunch] != "Omelette" {
		t.Fatalf("selection not persisted: %v", got.SelectedMeals)
	}
}

func TestUpdateSelectedMealsMerges(t *testing.T) {
	s := newTestStore(t)
	s.UpdateSelectedMeals("2025-09-10", model.MealSelections{model.SlotLunch: "Omelette"})
	s.UpdateSelectedMeals("2025-09-10", model.MealSelections{model.SlotDinner: "Chili"})

	got, _ := s.GetDayProgress("2025-09-10")
	want := model.MealSelections{model.SlotLunch: "Omelette", model.SlotDinner: "Chili"}
	if !reflect.DeepEqual(got.SelectedMeals, want) {
		t.Fatalf("selections = %v, want %v", got.SelectedMeals, want)
	}
}

func TestUpdateSelectedMealsKeepsCompletion(t *testing.T) {
	s := newTestStore(t)
	p := model.NewDayProgress("2025-09-11")
	p.Breakfast = true
	p.Supplements = []bool{true, true}
	s.SaveDayProgress(p)

	s.UpdateSelectedMeals("2025-09-11", model.MealSelections{model.SlotSnack: "Apple + walnuts"})
	got, _ := s.GetDayProgress("2025-09-11")
	if !got.Breakfast || got.CompletedSupplements() != 2 {
		t.Fatalf("completion lost on merge: %+v", got)
	}
}

func TestUpdateSelectedMealsClearsSlot(t *testing.T) {
	s := newTestStore(t)
	s.UpdateSelectedMeals("2025-09-12", model.MealSelections{model.SlotLunch: "A", model.SlotDinner: "B"})
	s.UpdateSelectedMeals("2025-09-12", model.MealSelections{model.SlotLunch: ""})

	got, _ := s.GetDayProgress("2025-09-12")
	if _, ok := got.SelectedMeals[model.SlotLunch]; ok {
		t.Fatal("empty key should clear the slot")
	}
	if got.SelectedMeals[model.SlotDinner] != "B" {
		t.Fatal("other slot should be untouched")
	}
}

func TestUpdateSelectedActivity(t *testing.T) {
	s := newTestStore(t)
	s.UpdateSelectedMeals("2025-09-13", model.MealSelections{model.SlotLunch: "A"})
	if _, err := s.UpdateSelectedActivity("2025-09-13", "Squash"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetDayProgress("2025-09-13")
	if got.SelectedActivity != "Squash" {
		t.Fatalf("activity = %q", got.SelectedActivity)
	}
	if got.SelectedMeals[model.SlotLunch] != "A" {
		t.Fatal("meal selections lost")
	}

	// Missing record is default-initialized.
	if _, err := s.UpdateSelectedActivity("2025-09-14", "Golf"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetDayProgress("2025-09-14")
	if got == nil || got.SelectedActivity != "Golf" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestListDayProgress(t *testing.T) {
	s := newTestStore(t)
	for _, d := range []string{"2025-09-03", "2025-09-01", "2025-09-08", "2025-09-07"} {
		s.SaveDayProgress(model.NewDayProgress(d))
	}
	list, err := s.ListDayProgress("2025-09-01", "2025-09-07")
	if err != nil {
		t.Fatal(err)
	}
	var dates []string
	for _, p := range list {
		dates = append(dates, p.Date)
	}
	want := []string{"2025-09-01", "2025-09-03", "2025-09-07"}
	if !reflect.DeepEqual(dates, want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
}

func TestListDayProgressEmpty(t *testing.T) {
	s := newTestStore(t)
	list, err := s.ListDayProgress("2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected 0 records, got %d", len(list))
	}
}

// ============================================================
// Recipes
// ============================================================

func TestSaveAndGetRecipe(t *testing.T) {
	s := newTestStore(t)
	in := testRecipe("r1")
	if err := s.SaveRecipe(in); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRecipe("r1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) || !got.UpdatedAt.Equal(in.UpdatedAt) {
		t.Fatalf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
	got.CreatedAt, got.UpdatedAt = in.CreatedAt, in.UpdatedAt
	if !reflect.DeepEqual(*got, in) {
		t.Fatalf("got %+v, want %+v", *got, in)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	s := newTestStore(t)
	r, err := s.GetRecipe("missing")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Fatalf("expected nil, got %+v", r)
	}
}

func TestSaveRecipeUpsertReplacesIngredients(t *testing.T) {
	s := newTestStore(t)
	r := testRecipe("r1")
	s.SaveRecipe(r)

	r.Name = "Salmon bowl"
	r.Ingredients = r.Ingredients[:1]
	if err := s.SaveRecipe(r); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetRecipe("r1")
	if got.Name != "Salmon bowl" {
		t.Fatalf("name = %q", got.Name)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Name != "Salmon" {
		t.Fatalf("ingredients = %+v", got.Ingredients)
	}
	all, _ := s.ListRecipes()
	if len(all) != 1 {
		t.Fatalf("upsert created a duplicate: %d recipes", len(all))
	}
}

func TestListRecipes(t *testing.T) {
	s := newTestStore(t)
	a := testRecipe("a")
	a.Name = "zucchini soup"
	b := testRecipe("b")
	b.Name = "Apple crumble"
	b.Ingredients = nil
	s.SaveRecipe(a)
	s.SaveRecipe(b)

	list, err := s.ListRecipes()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(list))
	}
	if list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("expected case-insensitive name order, got %s, %s", list[0].Name, list[1].Name)
	}
	if len(list[0].Ingredients) != 0 || list[0].Ingredients == nil {
		t.Fatalf("recipe without ingredients = %v", list[0].Ingredients)
	}
	if len(list[1].Ingredients) != 3 || list[1].Ingredients[2].Name != "Soy sauce" {
		t.Fatalf("ingredient order not kept: %+v", list[1].Ingredients)
	}
}

func TestDeleteRecipe(t *testing.T) {
	s := newTestStore(t)
	s.SaveRecipe(testRecipe("r1"))
	if err := s.DeleteRecipe("r1"); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.GetRecipe("r1"); r != nil {
		t.Fatal("recipe still present")
	}

	var n int
	s.db.QueryRow(`SELECT COUNT(*) FROM recipe_ingredients WHERE recipe_id = 'r1'`).Scan(&n)
	if n != 0 {
		t.Fatalf("ingredients not cascaded: %d left", n)
	}

	if err := s.DeleteRecipe("r1"); err != nil {
		t.Fatalf("deleting an absent recipe should succeed: %v", err)
	}
}

// ============================================================
// Profile
// ============================================================

func TestProfileLifecycle(t *testing.T) {
	s := newTestStore(t)
	if p, err := s.GetProfile(model.ProfileID); err != nil || p != nil {
		t.Fatalf("expected no profile, got %v, %v", p, err)
	}

	created := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	in := model.UserProfile{
		ID:                 model.ProfileID,
		WeightKg:           72.5,
		HeightCm:           178,
		Age:                34,
		Sex:                model.SexMale,
		ActivityMultiplier: 1.55,
		ActivityLabel:      "Moderately active",
		Goal:               model.GoalLose,
		DietType:           model.DietHighProteinLowCarb,
		BMR:                1717.5,
		TDEE:               2662,
		TargetCalories:     2130,
		TargetMacros:       model.MacroTargets{ProteinG: 181, LipidG: 123, CarbG: 75},
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	if err := s.SaveProfile(in); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProfile(model.ProfileID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v", got.CreatedAt)
	}
	got.CreatedAt, got.UpdatedAt = in.CreatedAt, in.UpdatedAt
	if !reflect.DeepEqual(*got, in) {
		t.Fatalf("got %+v, want %+v", *got, in)
	}

	in.WeightKg = 70
	if err := s.SaveProfile(in); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProfile(model.ProfileID)
	if got.WeightKg != 70 {
		t.Fatalf("weight = %v after update", got.WeightKg)
	}

	if err := s.DeleteProfile(model.ProfileID); err != nil {
		t.Fatal(err)
	}
	if p, _ := s.GetProfile(model.ProfileID); p != nil {
		t.Fatal("profile still present after delete")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		SettingActivityMinutes: "45",
		SettingLocale:          "fr",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting(SettingActivityMinutes, "60")
	val, _ := s.GetSetting(SettingActivityMinutes)
	if val != "60" {
		t.Fatalf("expected 60, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetIntSetting(t *testing.T) {
	s := newTestStore(t)
	if got := s.GetIntSetting(SettingActivityMinutes, 10); got != 45 {
		t.Fatalf("got %d, want 45", got)
	}
	if got := s.GetIntSetting("nonexistent", 10); got != 10 {
		t.Fatalf("missing key: got %d, want default", got)
	}
	s.SetSetting(SettingActivityMinutes, "soon")
	if got := s.GetIntSetting(SettingActivityMinutes, 10); got != 10 {
		t.Fatalf("invalid value: got %d, want default", got)
	}
	s.SetSetting(SettingActivityMinutes, "-5")
	if got := s.GetIntSetting(SettingActivityMinutes, 10); got != 10 {
		t.Fatalf("negative value: got %d, want default", got)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 2 {
		t.Fatalf("expected at least 2 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
