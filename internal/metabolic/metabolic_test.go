package metabolic

import (
	"errors"
	"testing"

	"github.com/sadopc/eprotocol/internal/model"
)

func validInput() Input {
	return Input{
		WeightKg:           80,
		HeightCm:           180,
		Age:                30,
		Sex:                model.SexMale,
		ActivityMultiplier: 1.55,
		Goal:               model.GoalMaintain,
		DietType:           model.DietStandard,
	}
}

func TestBMR(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		age    int
		sex    model.Sex
		want   float64
	}{
		{"male", 80, 180, 30, model.SexMale, 1780},
		{"female", 60, 165, 25, model.SexFemale, 1345.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BMR(tt.weight, tt.height, tt.age, tt.sex); got != tt.want {
				t.Fatalf("BMR = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTDEE(t *testing.T) {
	if got := TDEE(1780, 1.55); got != 2759 {
		t.Fatalf("TDEE = %d, want 2759", got)
	}
	if got := TDEE(1345.25, 1.2); got != 1614 {
		t.Fatalf("TDEE = %d, want 1614", got)
	}
}

func TestTargetCalories(t *testing.T) {
	tests := []struct {
		goal model.Goal
		want int
	}{
		{model.GoalLose, 2207},
		{model.GoalMaintain, 2759},
		{model.GoalGain, 3035},
	}
	for _, tt := range tests {
		if got := TargetCalories(2759, tt.goal); got != tt.want {
			t.Errorf("TargetCalories(2759, %s) = %d, want %d", tt.goal, got, tt.want)
		}
	}
}

func TestTargetMacros(t *testing.T) {
	std := TargetMacros(2759, 80, model.DietStandard)
	if std != (model.MacroTargets{ProteinG: 160, LipidG: 80, CarbG: 350}) {
		t.Fatalf("standard = %+v", std)
	}
	hplc := TargetMacros(2759, 80, model.DietHighProteinLowCarb)
	if hplc != (model.MacroTargets{ProteinG: 200, LipidG: 184, CarbG: 75}) {
		t.Fatalf("high protein = %+v", hplc)
	}
	// 18% of 1200 kcal is 54 g, under the cap.
	low := TargetMacros(1200, 55, model.DietHighProteinLowCarb)
	if low.CarbG != 54 {
		t.Fatalf("carbs = %d, want 54", low.CarbG)
	}
}

func TestActivityLabel(t *testing.T) {
	tests := []struct {
		m    float64
		want string
	}{
		{1.2, "Sedentary"},
		{1.3, "Lightly active"},
		{1.375, "Lightly active"},
		{1.55, "Moderately active"},
		{1.725, "Very active"},
		{1.8, "Extremely active"},
		{1.9, "Extremely active"},
	}
	for _, tt := range tests {
		if got := ActivityLabel(tt.m); got != tt.want {
			t.Errorf("ActivityLabel(%v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

// ============================================================
// Properties over a grid of profiles
// ============================================================

func eachProfile(fn func(in Input)) {
	for _, w := range []float64{45, 58.5, 72, 90, 130} {
		for _, h := range []float64{150, 170, 195} {
			for _, age := range []int{18, 35, 70} {
				for _, sex := range []model.Sex{model.SexMale, model.SexFemale} {
					for _, m := range ActivityLevels {
						in := validInput()
						in.WeightKg, in.HeightCm, in.Age, in.Sex, in.ActivityMultiplier = w, h, age, sex, m
						fn(in)
					}
				}
			}
		}
	}
}

func TestMaintainTargetEqualsTDEE(t *testing.T) {
	eachProfile(func(in Input) {
		bmr := BMR(in.WeightKg, in.HeightCm, in.Age, in.Sex)
		tdee := TDEE(bmr, in.ActivityMultiplier)
		if got := TargetCalories(tdee, model.GoalMaintain); got != tdee {
			t.Fatalf("maintain target = %d, TDEE = %d", got, tdee)
		}
	})
}

func TestStandardMacrosMatchCalories(t *testing.T) {
	eachProfile(func(in Input) {
		for _, goal := range []model.Goal{model.GoalLose, model.GoalMaintain, model.GoalGain} {
			in.Goal = goal
			r, err := Compute(in)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			m := r.TargetMacros
			kcal := m.ProteinG*4 + m.LipidG*9 + m.CarbG*4
			diff := kcal - r.TargetCalories
			if diff < -4 || diff > 4 {
				t.Fatalf("%+v: macros give %d kcal, target %d", in, kcal, r.TargetCalories)
			}
		}
	})
}

func TestLowCarbCap(t *testing.T) {
	eachProfile(func(in Input) {
		in.DietType = model.DietHighProteinLowCarb
		in.Goal = model.GoalGain
		r, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if r.TargetMacros.CarbG > MaxLowCarbG {
			t.Fatalf("carbs = %d, above cap", r.TargetMacros.CarbG)
		}
	})
}

// ============================================================
// Validation
// ============================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Input)
		field string
	}{
		{"zero weight", func(in *Input) { in.WeightKg = 0 }, "weight_kg"},
		{"negative weight", func(in *Input) { in.WeightKg = -3 }, "weight_kg"},
		{"zero height", func(in *Input) { in.HeightCm = 0 }, "height_cm"},
		{"zero age", func(in *Input) { in.Age = 0 }, "age"},
		{"bad sex", func(in *Input) { in.Sex = "other" }, "sex"},
		{"low multiplier", func(in *Input) { in.ActivityMultiplier = 1.0 }, "activityMultiplier"},
		{"high multiplier", func(in *Input) { in.ActivityMultiplier = 2.2 }, "activityMultiplier"},
		{"bad goal", func(in *Input) { in.Goal = "bulk" }, "goal"},
		{"bad diet", func(in *Input) { in.DietType = "keto" }, "dietType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mod(&in)
			err := in.Validate()
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Fatalf("field = %q, want %q", verr.Field, tt.field)
			}
			if _, err := Compute(in); err == nil {
				t.Fatal("Compute should reject invalid input")
			}
		})
	}

	if err := validInput().Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}

func TestComputeLabel(t *testing.T) {
	r, err := Compute(validInput())
	if err != nil {
		t.Fatal(err)
	}
	if r.ActivityLabel != "Moderately active" {
		t.Fatalf("label = %q", r.ActivityLabel)
	}
	if r.BMR != 1780 || r.TDEE != 2759 || r.TargetCalories != 2759 {
		t.Fatalf("result = %+v", r)
	}

	in := validInput()
	in.ActivityLabel = "Office job, 3 runs a week"
	r, err = Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if r.ActivityLabel != in.ActivityLabel {
		t.Fatalf("explicit label not kept: %q", r.ActivityLabel)
	}
}
