package tracker

import (
	"time"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/protocol"
	"github.com/sadopc/eprotocol/internal/reference"
)

const daysPerWeek = 7

// DaySummary is one day of a week summary.
type DaySummary struct {
	Date            string
	Planned         model.Macros
	Consumed        model.Macros
	MealsDone       int
	Activity        string
	ActivityDone    bool
	SupplementsDone int
	CaloriesBurned  int
	Tracked         bool
}

// WeekSummary aggregates a Monday to Sunday week.
type WeekSummary struct {
	Start string
	End   string
	Days  []DaySummary

	// Average is the mean consumption over tracked days.
	Average    model.Macros
	Objectives model.Objectives

	MealsPlanned         int
	MealsCompleted       int
	ActivitiesPlanned    int
	ActivitiesCompleted  int
	CompletedActivities  []string
	SupplementsPlanned   int
	SupplementsCompleted int
	CaloriesBurned       int
}

// WeekStart returns the Monday of the week containing date, at midnight.
func WeekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	y, m, d := date.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, date.Location())
}

// Week summarizes the week containing date. It reads stored progress and
// never creates records. Objectives fall back to the reference plan when no
// profile exists.
func (t *Tracker) Week(date time.Time) (WeekSummary, error) {
	start := WeekStart(date)
	end := start.AddDate(0, 0, daysPerWeek-1)

	records, err := t.progress.ListDayProgress(model.DateKey(start), model.DateKey(end))
	if err != nil {
		return WeekSummary{}, err
	}
	byDate := make(map[string]model.DayProgress, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}

	prof, err := t.profiles.Current()
	if err != nil {
		return WeekSummary{}, err
	}

	w := WeekSummary{
		Start:      model.DateKey(start),
		End:        model.DateKey(end),
		Objectives: weekObjectives(prof),
	}

	recipes := t.recipes.All()
	seen := map[string]bool{}
	tracked := 0
	var consumed model.Macros

	for i := 0; i < daysPerWeek; i++ {
		day := start.AddDate(0, 0, i)
		key := model.DateKey(day)

		var progress *model.DayProgress
		if r, ok := byDate[key]; ok {
			progress = &r
		}
		proto := t.gen.Generate(day, protocol.SelectionsOf(progress), recipes)

		w.MealsPlanned += len(model.AllSlots)
		w.ActivitiesPlanned++
		w.SupplementsPlanned += len(proto.Supplements)

		ds := DaySummary{Date: key, Planned: proto.Totals, Activity: proto.Activity}
		if progress != nil {
			ds.Tracked = true
			ds.Consumed = Consumed(proto, *progress)
			ds.MealsDone = progress.CompletedMeals()
			ds.ActivityDone = progress.Activity
			ds.SupplementsDone = progress.CompletedSupplements()
			if ds.ActivityDone && prof != nil {
				ds.CaloriesBurned = t.burned(proto.Activity, prof.WeightKg)
			}

			tracked++
			consumed = consumed.Add(ds.Consumed)
			w.MealsCompleted += ds.MealsDone
			w.SupplementsCompleted += ds.SupplementsDone
			w.CaloriesBurned += ds.CaloriesBurned
			if ds.ActivityDone {
				w.ActivitiesCompleted++
				if !seen[proto.Activity] {
					seen[proto.Activity] = true
					w.CompletedActivities = append(w.CompletedActivities, proto.Activity)
				}
			}
		}
		w.Days = append(w.Days, ds)
	}

	if tracked > 0 {
		w.Average = consumed.Scale(1 / float64(tracked))
	}
	return w, nil
}

func weekObjectives(p *model.UserProfile) model.Objectives {
	if p == nil {
		return reference.ReferenceObjectives
	}
	return p.Objectives()
}
