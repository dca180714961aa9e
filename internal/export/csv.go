package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
)

// DayLog is one exported day: what was planned and what was done.
type DayLog struct {
	Date            string       `json:"date"`
	Lunch           string       `json:"lunch"`
	Dinner          string       `json:"dinner"`
	Snack           string       `json:"snack"`
	Activity        string       `json:"activity"`
	ActivityDone    bool         `json:"activity_done"`
	CaloriesBurned  int          `json:"calories_burned"`
	MealsDone       int          `json:"meals_done"`
	SupplementsDone int          `json:"supplements_done"`
	Planned         model.Macros `json:"planned"`
	Consumed        model.Macros `json:"consumed"`
}

var csvHeader = []string{
	"Date", "Lunch", "Dinner", "Snack", "Activity", "Activity done", "Burned (kcal)",
	"Meals done", "Supplements done",
	"Planned (kcal)", "Consumed (kcal)", "Protein (g)", "Lipid (g)", "Carb (g)",
}

func ToCSV(days []DayLog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			d.Lunch,
			d.Dinner,
			d.Snack,
			d.Activity,
			strconv.FormatBool(d.ActivityDone),
			strconv.Itoa(d.CaloriesBurned),
			strconv.Itoa(d.MealsDone),
			strconv.Itoa(d.SupplementsDone),
			formatAmount(d.Planned.Kcal),
			formatAmount(d.Consumed.Kcal),
			formatAmount(d.Consumed.ProteinG),
			formatAmount(d.Consumed.LipidG),
			formatAmount(d.Consumed.CarbG),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatAmount writes a macro amount with at most one decimal.
func formatAmount(v float64) string {
	return strconv.FormatFloat(numfmt.RoundTo(v, 1), 'f', -1, 64)
}
