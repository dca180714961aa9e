package model

import (
	"fmt"
	"time"
)

// DateLayout is the layout of the date keys used for protocols and progress.
const DateLayout = "2006-01-02"

// DateKey returns the local calendar date of t as a YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

type Macros struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	LipidG   float64 `json:"lipid_g"`
	CarbG    float64 `json:"carb_g"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Kcal:     m.Kcal + o.Kcal,
		ProteinG: m.ProteinG + o.ProteinG,
		LipidG:   m.LipidG + o.LipidG,
		CarbG:    m.CarbG + o.CarbG,
	}
}

func (m Macros) Scale(f float64) Macros {
	return Macros{
		Kcal:     m.Kcal * f,
		ProteinG: m.ProteinG * f,
		LipidG:   m.LipidG * f,
		CarbG:    m.CarbG * f,
	}
}

// Meal is a resolved dish. Key is the static table key or, for custom
// recipes, the recipe id.
type Meal struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Macros      `json:"macros"`
	Ingredients string `json:"ingredients,omitempty"`
	Custom      bool   `json:"custom,omitempty"`
}

// Slot tags a meal category of the day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
	SlotShake     Slot = "shake"
)

// MealSlots are the slots a user can override or author recipes for.
var MealSlots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// AllSlots includes the fixed post-workout shake.
var AllSlots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack, SlotShake}

func ParseSlot(s string) (Slot, error) {
	for _, slot := range AllSlots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown slot %q", s)
}

// IsMealSlot reports whether recipes may be authored for the slot.
func (s Slot) IsMealSlot() bool {
	switch s {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return true
	}
	return false
}

// Accepts reports whether r is a candidate for the slot. The shake slot
// accepts no recipes.
func (s Slot) Accepts(r Recipe) bool {
	return s.IsMealSlot() && r.Type == s
}

func (s Slot) Label() string {
	switch s {
	case SlotBreakfast:
		return "Breakfast"
	case SlotLunch:
		return "Lunch"
	case SlotDinner:
		return "Dinner"
	case SlotSnack:
		return "Snack"
	case SlotShake:
		return "Post-workout shake"
	}
	return string(s)
}

type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Macros   Macros  `json:"macros"`
}

// Recipe is a user-authored dish. Its macros are the sum of its ingredient
// macros, computed by the caller before saving.
type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        Slot         `json:"mealType"`
	Macros                   // flattened: kcal, protein_g, lipid_g, carb_g
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	IsDefault   bool         `json:"isDefault,omitempty"`
}

// Meal converts the recipe into a meal keyed by its id.
func (r Recipe) Meal() Meal {
	names := ""
	for i, ing := range r.Ingredients {
		if i > 0 {
			names += " + "
		}
		names += ing.Name
	}
	return Meal{
		Key:         r.ID,
		Name:        r.Name,
		Macros:      r.Macros,
		Ingredients: names,
		Custom:      true,
	}
}

type DayProtocol struct {
	Date        string   `json:"date"`
	Breakfast   Meal     `json:"breakfast"`
	Lunch       Meal     `json:"lunch"`
	Dinner      Meal     `json:"dinner"`
	Snack       Meal     `json:"snack"`
	Shake       Meal     `json:"shake"`
	Activity    string   `json:"activity"`
	Supplements []string `json:"supplements"`
	Totals      Macros   `json:"totals"`
}

// Meal returns the meal assigned to slot.
func (p DayProtocol) Meal(slot Slot) Meal {
	switch slot {
	case SlotBreakfast:
		return p.Breakfast
	case SlotLunch:
		return p.Lunch
	case SlotDinner:
		return p.Dinner
	case SlotSnack:
		return p.Snack
	case SlotShake:
		return p.Shake
	}
	return Meal{}
}

// MealSelections maps a meal slot to the chosen static key or recipe id.
type MealSelections map[Slot]string

type DayProgress struct {
	Date             string         `json:"date"`
	Breakfast        bool           `json:"breakfast"`
	Lunch            bool           `json:"lunch"`
	Dinner           bool           `json:"dinner"`
	Snack            bool           `json:"snack"`
	Shake            bool           `json:"shake"`
	Activity         bool           `json:"activity"`
	Supplements      []bool         `json:"supplements"`
	SelectedMeals    MealSelections `json:"selectedMeals"`
	SelectedActivity string         `json:"selectedActivity,omitempty"`
}

// NewDayProgress returns the default record for date: nothing completed,
// no selections.
func NewDayProgress(date string) DayProgress {
	return DayProgress{
		Date:          date,
		Supplements:   []bool{},
		SelectedMeals: MealSelections{},
	}
}

func (p DayProgress) Done(slot Slot) bool {
	switch slot {
	case SlotBreakfast:
		return p.Breakfast
	case SlotLunch:
		return p.Lunch
	case SlotDinner:
		return p.Dinner
	case SlotSnack:
		return p.Snack
	case SlotShake:
		return p.Shake
	}
	return false
}

func (p *DayProgress) SetDone(slot Slot, done bool) {
	switch slot {
	case SlotBreakfast:
		p.Breakfast = done
	case SlotLunch:
		p.Lunch = done
	case SlotDinner:
		p.Dinner = done
	case SlotSnack:
		p.Snack = done
	case SlotShake:
		p.Shake = done
	}
}

// CompletedMeals counts completed slots, shake included.
func (p DayProgress) CompletedMeals() int {
	n := 0
	for _, s := range AllSlots {
		if p.Done(s) {
			n++
		}
	}
	return n
}

func (p DayProgress) CompletedSupplements() int {
	n := 0
	for _, done := range p.Supplements {
		if done {
			n++
		}
	}
	return n
}

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

type DietType string

const (
	DietStandard           DietType = "standard"
	DietHighProteinLowCarb DietType = "high_protein_low_carb"
)

// MacroTargets are daily gram targets.
type MacroTargets struct {
	ProteinG int `json:"protein_g"`
	LipidG   int `json:"lipid_g"`
	CarbG    int `json:"carb_g"`
}

// ProfileID is the key of the singleton profile record.
const ProfileID = "current"

type UserProfile struct {
	ID                 string       `json:"id"`
	WeightKg           float64      `json:"weight_kg"`
	HeightCm           float64      `json:"height_cm"`
	Age                int          `json:"age"`
	Sex                Sex          `json:"sex"`
	ActivityMultiplier float64      `json:"activityMultiplier"`
	ActivityLabel      string       `json:"activityLabel"`
	Goal               Goal         `json:"goal"`
	DietType           DietType     `json:"dietType"`
	BMR                float64      `json:"bmr"`
	TDEE               int          `json:"tdee"`
	TargetCalories     int          `json:"targetCalories"`
	TargetMacros       MacroTargets `json:"targetMacros"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Objectives are the daily targets a day is measured against.
type Objectives struct {
	Kcal     float64
	ProteinG float64
	LipidG   float64
	CarbG    float64
}

// Objectives returns the profile's calculated targets.
func (p UserProfile) Objectives() Objectives {
	return Objectives{
		Kcal:     float64(p.TargetCalories),
		ProteinG: float64(p.TargetMacros.ProteinG),
		LipidG:   float64(p.TargetMacros.LipidG),
		CarbG:    float64(p.TargetMacros.CarbG),
	}
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
