package profile

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sadopc/eprotocol/internal/metabolic"
	"github.com/sadopc/eprotocol/internal/model"
	"github.com/sadopc/eprotocol/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewService(s, zaptest.NewLogger(t)), s
}

func sampleInput() metabolic.Input {
	return metabolic.Input{
		WeightKg:           80,
		HeightCm:           180,
		Age:                30,
		Sex:                model.SexMale,
		ActivityMultiplier: 1.55,
		Goal:               model.GoalLose,
		DietType:           model.DietStandard,
	}
}

func TestNoProfile(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.Current()
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Fatalf("expected no profile, got %+v", p)
	}
	obj, err := svc.Objectives()
	if err != nil {
		t.Fatal(err)
	}
	if obj != (model.Objectives{}) {
		t.Fatalf("objectives = %+v, want zero", obj)
	}
}

func TestSaveComputesDerivedFields(t *testing.T) {
	svc, st := newTestService(t)
	p, err := svc.Save(sampleInput())
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != model.ProfileID {
		t.Fatalf("id = %q", p.ID)
	}
	if p.BMR != 1780 || p.TDEE != 2759 || p.TargetCalories != 2207 {
		t.Fatalf("derived = %v / %d / %d", p.BMR, p.TDEE, p.TargetCalories)
	}
	if p.ActivityLabel != "Moderately active" {
		t.Fatalf("label = %q", p.ActivityLabel)
	}

	stored, _ := st.GetProfile(model.ProfileID)
	if stored == nil || stored.TargetMacros != p.TargetMacros {
		t.Fatalf("profile not persisted: %+v", stored)
	}

	obj, _ := svc.Objectives()
	if obj.Kcal != 2207 || obj.ProteinG != 160 || obj.LipidG != 80 {
		t.Fatalf("objectives = %+v", obj)
	}
}

func TestSaveKeepsCreatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	first := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	created, err := svc.Save(sampleInput())
	if err != nil {
		t.Fatal(err)
	}

	later := first.Add(48 * time.Hour)
	svc.now = func() time.Time { return later }
	in := sampleInput()
	in.WeightKg = 78
	updated, err := svc.Save(in)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt = %v, want %v", updated.UpdatedAt, later)
	}
	if updated.WeightKg != 78 {
		t.Fatal("weight not updated")
	}
}

func TestSaveInvalidPersistsNothing(t *testing.T) {
	svc, st := newTestService(t)
	in := sampleInput()
	in.Age = 0
	_, err := svc.Save(in)
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "age" {
		t.Fatalf("expected age validation error, got %v", err)
	}
	if p, _ := st.GetProfile(model.ProfileID); p != nil {
		t.Fatal("invalid profile was persisted")
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Save(sampleInput())
	if err := svc.Delete(); err != nil {
		t.Fatal(err)
	}
	p, _ := svc.Current()
	if p != nil {
		t.Fatal("profile still present")
	}
	obj, _ := svc.Objectives()
	if obj != (model.Objectives{}) {
		t.Fatalf("objectives = %+v, want zero", obj)
	}
	if err := svc.Delete(); err != nil {
		t.Fatalf("deleting a missing profile should succeed: %v", err)
	}
}

func TestInputOf(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.Save(sampleInput())
	if InputOf(p) != sampleInput() {
		t.Fatalf("InputOf = %+v", InputOf(p))
	}
}
