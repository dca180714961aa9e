// Package protocol builds the meals, activity and supplements of a day.
//
// Generation is pure: the same date, selections and recipe set always yield
// the same protocol. Rotation is anchored on Epoch.
package protocol

import (
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/reference"
)

// Epoch is day 0 of the rotation.
var Epoch = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// Selections are the user overrides for one day.
type Selections struct {
	Meals    model.MealSelections
	Activity string
}

// SelectionsOf extracts the overrides stored in a progress record.
func SelectionsOf(p *model.DayProgress) Selections {
	if p == nil {
		return Selections{}
	}
	return Selections{Meals: p.SelectedMeals, Activity: p.SelectedActivity}
}

type Generator struct {
	log *zap.Logger
}

func NewGenerator(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log}
}

// DayIndex returns the number of whole days between Epoch and the calendar
// date of t. Dates before Epoch are negative.
func DayIndex(t time.Time) int {
	// Unix seconds rather than Sub: a Duration saturates ~292 years out.
	civil := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int((civil.Unix() - Epoch.Unix()) / secondsPerDay)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// DefaultKey returns the rotation key of slot for the given day index.
func DefaultKey(slot model.Slot, dayIndex int) string {
	switch slot {
	case model.SlotLunch:
		return reference.Dishes[abs(dayIndex*2)%len(reference.Dishes)].Key
	case model.SlotDinner:
		return reference.Dishes[abs(dayIndex*2+1)%len(reference.Dishes)].Key
	case model.SlotSnack:
		return reference.DefaultSnackKey
	case model.SlotBreakfast:
		return reference.Breakfasts[0].Key
	case model.SlotShake:
		return reference.Shake.Key
	}
	return ""
}

// DefaultActivity returns the rotation activity for the given day index.
func DefaultActivity(dayIndex int) string {
	return reference.Activities[abs(dayIndex)%len(reference.Activities)].Name
}

// Generate resolves the full protocol for date.
func (g *Generator) Generate(date time.Time, sel Selections, recipes []model.Recipe) model.DayProtocol {
	idx := DayIndex(date)

	p := model.DayProtocol{
		Date:        model.DateKey(date),
		Breakfast:   g.resolve(model.SlotBreakfast, idx, sel.Meals[model.SlotBreakfast], recipes),
		Lunch:       g.resolve(model.SlotLunch, idx, sel.Meals[model.SlotLunch], recipes),
		Dinner:      g.resolve(model.SlotDinner, idx, sel.Meals[model.SlotDinner], recipes),
		Snack:       g.resolve(model.SlotSnack, idx, sel.Meals[model.SlotSnack], recipes),
		Shake:       reference.Shake,
		Activity:    DefaultActivity(idx),
		Supplements: append([]string(nil), reference.Supplements...),
	}
	if sel.Activity != "" {
		p.Activity = sel.Activity
	}
	if _, ok := reference.MET(p.Activity); !ok {
		g.log.Debug("activity has no MET value", zap.String("activity", p.Activity), zap.String("date", p.Date))
	}

	for _, slot := range model.AllSlots {
		p.Totals = p.Totals.Add(p.Meal(slot).Macros)
	}
	return p
}

func (g *Generator) resolve(slot model.Slot, dayIndex int, override string, recipes []model.Recipe) model.Meal {
	key := DefaultKey(slot, dayIndex)
	if override != "" {
		key = override
	}
	m, matched := chain(slot, dayIndex, recipes).resolve(key)
	if !matched {
		g.log.Debug("meal key not found, using rotation default",
			zap.String("slot", string(slot)),
			zap.String("key", key),
		)
	}
	return m
}

// Candidates lists every meal selectable for slot: the static table first,
// then the recipes the slot accepts.
func (g *Generator) Candidates(slot model.Slot, recipes []model.Recipe) []model.Meal {
	out := append([]model.Meal(nil), reference.Table(slot)...)
	for _, r := range recipes {
		if slot.Accepts(r) {
			out = append(out, r.Meal())
		}
	}
	return out
}
