// Package metabolic computes energy expenditure and macro targets from a
// biometric profile using the Mifflin-St Jeor equation.
package metabolic

import (
	"math"

	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/numfmt"
)

const (
	MinMultiplier = 1.2
	MaxMultiplier = 1.9

	// MaxLowCarbG caps daily carbs on the high-protein-low-carb diet.
	MaxLowCarbG = 75
)

// ActivityLevels are the standard multipliers offered to the user.
var ActivityLevels = []float64{1.2, 1.375, 1.55, 1.725, 1.9}

// Input is the user-entered part of a profile.
type Input struct {
	WeightKg           float64
	HeightCm           float64
	Age                int
	Sex                model.Sex
	ActivityMultiplier float64
	ActivityLabel      string
	Goal               model.Goal
	DietType           model.DietType
}

// Result holds the derived fields.
type Result struct {
	BMR            float64
	TDEE           int
	TargetCalories int
	TargetMacros   model.MacroTargets
	ActivityLabel  string
}

func BMR(weightKg, heightCm float64, age int, sex model.Sex) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == model.SexMale {
		return base + 5
	}
	return base - 161
}

func TDEE(bmr, multiplier float64) int {
	return numfmt.RoundInt(bmr * multiplier)
}

func TargetCalories(tdee int, goal model.Goal) int {
	switch goal {
	case model.GoalLose:
		return numfmt.RoundInt(float64(tdee) * 0.8)
	case model.GoalGain:
		return numfmt.RoundInt(float64(tdee) * 1.1)
	}
	return tdee
}

// TargetMacros splits calories into gram targets. The standard diet fixes
// protein at 2 g/kg and fat at 1 g/kg, carbs take the rest. The
// high-protein-low-carb diet fixes protein at 2.5 g/kg, carbs at 18% of
// calories capped at MaxLowCarbG, fat takes the rest.
func TargetMacros(calories int, weightKg float64, diet model.DietType) model.MacroTargets {
	kcal := float64(calories)
	if diet == model.DietHighProteinLowCarb {
		protein := numfmt.RoundInt(weightKg * 2.5)
		carb := int(math.Min(MaxLowCarbG, numfmt.Round(kcal*0.18/4)))
		lipid := numfmt.RoundInt((kcal - float64(protein*4) - float64(carb*4)) / 9)
		return model.MacroTargets{ProteinG: protein, LipidG: lipid, CarbG: carb}
	}

	protein := numfmt.RoundInt(weightKg * 2)
	lipid := numfmt.RoundInt(weightKg)
	carb := numfmt.RoundInt((kcal - float64(protein*4) - float64(lipid*9)) / 4)
	return model.MacroTargets{ProteinG: protein, LipidG: lipid, CarbG: carb}
}

// ActivityLabel names the activity level of a multiplier.
func ActivityLabel(multiplier float64) string {
	switch {
	case multiplier <= 1.2:
		return "Sedentary"
	case multiplier <= 1.375:
		return "Lightly active"
	case multiplier <= 1.55:
		return "Moderately active"
	case multiplier <= 1.725:
		return "Very active"
	}
	return "Extremely active"
}

// Validate returns a *model.ValidationError for the first rejected field.
func (in Input) Validate() error {
	switch {
	case !(in.WeightKg > 0) || math.IsInf(in.WeightKg, 0):
		return &model.ValidationError{Field: "weight_kg", Message: "must be greater than 0"}
	case !(in.HeightCm > 0) || math.IsInf(in.HeightCm, 0):
		return &model.ValidationError{Field: "height_cm", Message: "must be greater than 0"}
	case in.Age <= 0:
		return &model.ValidationError{Field: "age", Message: "must be greater than 0"}
	}

	switch in.Sex {
	case model.SexMale, model.SexFemale:
	default:
		return &model.ValidationError{Field: "sex", Message: "must be male or female"}
	}

	if !(in.ActivityMultiplier >= MinMultiplier && in.ActivityMultiplier <= MaxMultiplier) {
		return &model.ValidationError{Field: "activityMultiplier", Message: "must be between 1.2 and 1.9"}
	}

	switch in.Goal {
	case model.GoalLose, model.GoalMaintain, model.GoalGain:
	default:
		return &model.ValidationError{Field: "goal", Message: "must be lose, maintain or gain"}
	}

	switch in.DietType {
	case model.DietStandard, model.DietHighProteinLowCarb:
	default:
		return &model.ValidationError{Field: "dietType", Message: "must be standard or high_protein_low_carb"}
	}
	return nil
}

// Compute validates in and derives every calculated field.
func Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	bmr := BMR(in.WeightKg, in.HeightCm, in.Age, in.Sex)
	tdee := TDEE(bmr, in.ActivityMultiplier)
	target := TargetCalories(tdee, in.Goal)

	label := in.ActivityLabel
	if label == "" {
		label = ActivityLabel(in.ActivityMultiplier)
	}

	return Result{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		TargetMacros:   TargetMacros(target, in.WeightKg, in.DietType),
		ActivityLabel:  label,
	}, nil
}
