package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sadopc/eprotocol/internal/model"
)

const progressColumns = `date, breakfast, lunch, dinner, snack, shake, activity,
	supplements, selected_meals, selected_activity`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*model.DayProgress, error) {
	p := &model.DayProgress{}
	var flags [6]int
	var supplements, selected string
	err := row.Scan(&p.Date, &flags[0], &flags[1], &flags[2], &flags[3], &flags[4], &flags[5],
		&supplements, &selected, &p.SelectedActivity)
	if err != nil {
		return nil, err
	}
	p.Breakfast = flags[0] == 1
	p.Lunch = flags[1] == 1
	p.Dinner = flags[2] == 1
	p.Snack = flags[3] == 1
	p.Shake = flags[4] == 1
	p.Activity = flags[5] == 1

	if err := json.Unmarshal([]byte(supplements), &p.Supplements); err != nil {
		return nil, fmt.Errorf("decode supplements of %s: %w", p.Date, err)
	}
	if err := json.Unmarshal([]byte(selected), &p.SelectedMeals); err != nil {
		return nil, fmt.Errorf("decode selected meals of %s: %w", p.Date, err)
	}
	if p.Supplements == nil {
		p.Supplements = []bool{}
	}
	if p.SelectedMeals == nil {
		p.SelectedMeals = model.MealSelections{}
	}
	return p, nil
}

func getProgress(q queryer, date string) (*model.DayProgress, error) {
	p, err := scanProgress(q.QueryRow(`SELECT `+progressColumns+` FROM day_progress WHERE date = ?`, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day progress %s: %w", date, err)
	}
	return p, nil
}

func saveProgress(q queryer, p model.DayProgress) error {
	supplements := p.Supplements
	if supplements == nil {
		supplements = []bool{}
	}
	selected := p.SelectedMeals
	if selected == nil {
		selected = model.MealSelections{}
	}
	supJSON, err := json.Marshal(supplements)
	if err != nil {
		return fmt.Errorf("encode supplements: %w", err)
	}
	selJSON, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("encode selected meals: %w", err)
	}

	_, err = q.Exec(`
		INSERT INTO day_progress (`+progressColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			breakfast = excluded.breakfast,
			lunch = excluded.lunch,
			dinner = excluded.dinner,
			snack = excluded.snack,
			shake = excluded.shake,
			activity = excluded.activity,
			supplements = excluded.supplements,
			selected_meals = excluded.selected_meals,
			selected_activity = excluded.selected_activity,
			updated_at = excluded.updated_at`,
		p.Date, boolInt(p.Breakfast), boolInt(p.Lunch), boolInt(p.Dinner), boolInt(p.Snack),
		boolInt(p.Shake), boolInt(p.Activity), string(supJSON), string(selJSON), p.SelectedActivity,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save day progress %s: %w", p.Date, err)
	}
	return nil
}

// GetDayProgress returns the record for date, or nil when none exists.
func (s *Store) GetDayProgress(date string) (*model.DayProgress, error) {
	return getProgress(s.db, date)
}

// SaveDayProgress replaces the whole record for p.Date.
func (s *Store) SaveDayProgress(p model.DayProgress) error {
	if p.Date == "" {
		return fmt.Errorf("save day progress: empty date")
	}
	return saveProgress(s.db, p)
}

// updateProgress runs read, default-init, mutate and write in one transaction.
func (s *Store) updateProgress(date string, mutate func(p *model.DayProgress)) (*model.DayProgress, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := getProgress(tx, date)
	if err != nil {
		return nil, err
	}
	if p == nil {
		fresh := model.NewDayProgress(date)
		p = &fresh
	}
	mutate(p)

	if err := saveProgress(tx, *p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit day progress %s: %w", date, err)
	}
	return p, nil
}

// UpdateSelectedMeals merges partial into the date's selections. An empty
// key clears that slot's override.
func (s *Store) UpdateSelectedMeals(date string, partial model.MealSelections) (*model.DayProgress, error) {
	return s.updateProgress(date, func(p *model.DayProgress) {
		for slot, key := range partial {
			if key == "" {
				delete(p.SelectedMeals, slot)
				continue
			}
			p.SelectedMeals[slot] = key
		}
	})
}

// UpdateSelectedActivity sets the date's activity override. An empty name
// clears it.
func (s *Store) UpdateSelectedActivity(date, activity string) (*model.DayProgress, error) {
	return s.updateProgress(date, func(p *model.DayProgress) {
		p.SelectedActivity = activity
	})
}

// ListDayProgress returns the records with from <= date <= to, oldest first.
func (s *Store) ListDayProgress(from, to string) ([]model.DayProgress, error) {
	rows, err := s.db.Query(
		`SELECT `+progressColumns+` FROM day_progress WHERE date >= ? AND date <= ? ORDER BY date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list day progress: %w", err)
	}
	defer rows.Close()

	var out []model.DayProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
