package tracker

import (
	"time"

	"github.com/sadopc/eprotocol/internal/export"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/protocol"
)

// Log builds export rows for every tracked day between from and to,
// inclusive. Days never visited are skipped.
func (t *Tracker) Log(from, to time.Time) ([]export.DayLog, error) {
	records, err := t.progress.ListDayProgress(model.DateKey(from), model.DateKey(to))
	if err != nil {
		return nil, err
	}
	prof, err := t.profiles.Current()
	if err != nil {
		return nil, err
	}

	recipes := t.recipes.All()
	var out []export.DayLog
	for i := range records {
		p := records[i]
		date, err := time.ParseInLocation(model.DateLayout, p.Date, from.Location())
		if err != nil {
			t.log.Sugar().Warnw("skipping malformed progress date", "date", p.Date)
			continue
		}
		proto := t.gen.Generate(date, protocol.SelectionsOf(&p), recipes)

		row := export.DayLog{
			Date:            p.Date,
			Lunch:           proto.Lunch.Name,
			Dinner:          proto.Dinner.Name,
			Snack:           proto.Snack.Name,
			Activity:        proto.Activity,
			ActivityDone:    p.Activity,
			MealsDone:       p.CompletedMeals(),
			SupplementsDone: p.CompletedSupplements(),
			Planned:         proto.Totals,
			Consumed:        Consumed(proto, p),
		}
		if p.Activity && prof != nil {
			row.CaloriesBurned = t.burned(proto.Activity, prof.WeightKg)
		}
		out = append(out, row)
	}
	return out, nil
}
