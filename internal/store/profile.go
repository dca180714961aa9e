package store

import (
	"database/sql"
	"fmt"

	"github.com/sadopc/eprotocol/internal/model"
)

// GetProfile returns the profile stored under id, or nil when none exists.
func (s *Store) GetProfile(id string) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	var sex, goal, diet, createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, weight_kg, height_cm, age, sex, activity_multiplier, activity_label,
		       goal, diet_type, bmr, tdee, target_calories,
		       target_protein_g, target_lipid_g, target_carb_g, created_at, updated_at
		FROM user_profile WHERE id = ?`, id,
	).Scan(&p.ID, &p.WeightKg, &p.HeightCm, &p.Age, &sex, &p.ActivityMultiplier, &p.ActivityLabel,
		&goal, &diet, &p.BMR, &p.TDEE, &p.TargetCalories,
		&p.TargetMacros.ProteinG, &p.TargetMacros.LipidG, &p.TargetMacros.CarbG, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	p.Sex = model.Sex(sex)
	p.Goal = model.Goal(goal)
	p.DietType = model.DietType(diet)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// SaveProfile inserts or replaces the profile with p.ID.
func (s *Store) SaveProfile(p model.UserProfile) error {
	_, err := s.db.Exec(`
		INSERT INTO user_profile (
			id, weight_kg, height_cm, age, sex, activity_multiplier, activity_label,
			goal, diet_type, bmr, tdee, target_calories,
			target_protein_g, target_lipid_g, target_carb_g, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			age = excluded.age,
			sex = excluded.sex,
			activity_multiplier = excluded.activity_multiplier,
			activity_label = excluded.activity_label,
			goal = excluded.goal,
			diet_type = excluded.diet_type,
			bmr = excluded.bmr,
			tdee = excluded.tdee,
			target_calories = excluded.target_calories,
			target_protein_g = excluded.target_protein_g,
			target_lipid_g = excluded.target_lipid_g,
			target_carb_g = excluded.target_carb_g,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		p.ID, p.WeightKg, p.HeightCm, p.Age, string(p.Sex), p.ActivityMultiplier, p.ActivityLabel,
		string(p.Goal), string(p.DietType), p.BMR, p.TDEE, p.TargetCalories,
		p.TargetMacros.ProteinG, p.TargetMacros.LipidG, p.TargetMacros.CarbG,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) DeleteProfile(id string) error {
	if _, err := s.db.Exec(`DELETE FROM user_profile WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}
