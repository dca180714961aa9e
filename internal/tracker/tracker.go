// Package tracker ties the generated protocol of a day to what the user
// completed and selected.
package tracker

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/protocol"
	"github.com/sadopc/eprotocol/internal/reference"
)

// ProgressStore persists day progress. *store.Store implements it.
type ProgressStore interface {
	GetDayProgress(date string) (*model.DayProgress, error)
	SaveDayProgress(p model.DayProgress) error
	UpdateSelectedMeals(date string, partial model.MealSelections) (*model.DayProgress, error)
	UpdateSelectedActivity(date, activity string) (*model.DayProgress, error)
	ListDayProgress(from, to string) ([]model.DayProgress, error)
}

// RecipeSource supplies custom recipes. *recipes.Book implements it.
type RecipeSource interface {
	All() []model.Recipe
}

// ProfileSource supplies the user profile. *profile.Service implements it.
type ProfileSource interface {
	Current() (*model.UserProfile, error)
}

type Tracker struct {
	gen      *protocol.Generator
	progress ProgressStore
	recipes  RecipeSource
	profiles ProfileSource
	log      *zap.Logger

	// ActivityMinutes is the session length used for calories burned.
	ActivityMinutes int
}

func New(progress ProgressStore, recipes RecipeSource, profiles ProfileSource, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		gen:             protocol.NewGenerator(log),
		progress:        progress,
		recipes:         recipes,
		profiles:        profiles,
		log:             log,
		ActivityMinutes: reference.DefaultActivityMinutes,
	}
}

// Day is everything shown for one date.
type Day struct {
	Protocol       model.DayProtocol
	Progress       model.DayProgress
	Consumed       model.Macros
	Objectives     model.Objectives
	Profile        *model.UserProfile
	CaloriesBurned int
}

// Candidates lists the selectable meals of slot.
func (t *Tracker) Candidates(slot model.Slot) []model.Meal {
	return t.gen.Candidates(slot, t.recipes.All())
}

// Day loads date, creating its progress record on first visit and resizing
// the supplement list to match the protocol.
func (t *Tracker) Day(date time.Time) (Day, error) {
	key := model.DateKey(date)
	p, err := t.progress.GetDayProgress(key)
	if err != nil {
		return Day{}, err
	}

	sel := protocol.SelectionsOf(p)
	proto := t.gen.Generate(date, sel, t.recipes.All())

	if p == nil {
		fresh := model.NewDayProgress(key)
		p = &fresh
	}
	if len(p.Supplements) != len(proto.Supplements) {
		p.Supplements = resize(p.Supplements, len(proto.Supplements))
		if err := t.progress.SaveDayProgress(*p); err != nil {
			return Day{}, err
		}
		t.log.Debug("day initialized", zap.String("date", key))
	}

	prof, err := t.profiles.Current()
	if err != nil {
		return Day{}, err
	}

	d := Day{
		Protocol: proto,
		Progress: *p,
		Consumed: Consumed(proto, *p),
		Profile:  prof,
	}
	if prof != nil {
		d.Objectives = prof.Objectives()
		d.CaloriesBurned = t.burned(proto.Activity, prof.WeightKg)
	}
	return d, nil
}

func (t *Tracker) burned(activity string, weightKg float64) int {
	kcal, ok := reference.CaloriesBurned(activity, weightKg, t.ActivityMinutes)
	if !ok {
		t.log.Warn("no MET value for activity", zap.String("activity", activity))
	}
	return kcal
}

func resize(flags []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, flags)
	return out
}

// Consumed sums the macros of completed meals and completed supplements.
func Consumed(proto model.DayProtocol, p model.DayProgress) model.Macros {
	var total model.Macros
	for _, slot := range model.AllSlots {
		if p.Done(slot) {
			total = total.Add(proto.Meal(slot).Macros)
		}
	}
	for i, done := range p.Supplements {
		if !done || i >= len(proto.Supplements) {
			continue
		}
		total = total.Add(reference.SupplementMacros[proto.Supplements[i]])
	}
	return total
}

func (t *Tracker) save(date time.Time, mutate func(p *model.DayProgress)) (Day, error) {
	d, err := t.Day(date)
	if err != nil {
		return Day{}, err
	}
	p := d.Progress
	p.Supplements = append([]bool(nil), p.Supplements...)
	mutate(&p)
	if err := t.progress.SaveDayProgress(p); err != nil {
		return Day{}, err
	}
	return t.Day(date)
}

// Toggle flips the completion of a meal slot.
func (t *Tracker) Toggle(date time.Time, slot model.Slot) (Day, error) {
	if _, err := model.ParseSlot(string(slot)); err != nil {
		return Day{}, err
	}
	return t.save(date, func(p *model.DayProgress) {
		p.SetDone(slot, !p.Done(slot))
	})
}

func (t *Tracker) ToggleActivity(date time.Time) (Day, error) {
	return t.save(date, func(p *model.DayProgress) {
		p.Activity = !p.Activity
	})
}

// ToggleSupplement flips the supplement at index i of the protocol list.
func (t *Tracker) ToggleSupplement(date time.Time, i int) (Day, error) {
	if i < 0 || i >= len(reference.Supplements) {
		return Day{}, fmt.Errorf("supplement index %d out of range", i)
	}
	return t.save(date, func(p *model.DayProgress) {
		p.Supplements[i] = !p.Supplements[i]
	})
}

// SelectMeal overrides a meal slot with a static key or recipe id. An empty
// key restores the rotation default.
func (t *Tracker) SelectMeal(date time.Time, slot model.Slot, key string) (Day, error) {
	if !slot.IsMealSlot() {
		return Day{}, fmt.Errorf("slot %q cannot be overridden", slot)
	}
	if _, err := t.progress.UpdateSelectedMeals(model.DateKey(date), model.MealSelections{slot: key}); err != nil {
		return Day{}, err
	}
	t.log.Info("meal selected", zap.String("date", model.DateKey(date)), zap.String("slot", string(slot)), zap.String("key", key))
	return t.Day(date)
}

// SelectActivity overrides the activity. An empty name restores the
// rotation default.
func (t *Tracker) SelectActivity(date time.Time, activity string) (Day, error) {
	if _, err := t.progress.UpdateSelectedActivity(model.DateKey(date), activity); err != nil {
		return Day{}, err
	}
	t.log.Info("activity selected", zap.String("date", model.DateKey(date)), zap.String("activity", activity))
	return t.Day(date)
}
