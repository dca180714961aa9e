// Package profile keeps the single user profile and the daily objectives
// derived from it.
package profile

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/eprotocol/internal/metabolic"
	"github.com/sadopc/eprotocol/internal/model"
)

// Repository persists the profile singleton. *store.Store implements it.
type Repository interface {
	GetProfile(id string) (*model.UserProfile, error)
	SaveProfile(p model.UserProfile) error
	DeleteProfile(id string) error
}

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log, now: time.Now}
}

// Current returns the stored profile, or nil when the user has none.
func (s *Service) Current() (*model.UserProfile, error) {
	p, err := s.repo.GetProfile(model.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// Save validates in, computes the derived fields and stores the profile.
// CreatedAt is kept from the existing profile. Invalid input is returned as
// a *model.ValidationError and nothing is written.
func (s *Service) Save(in metabolic.Input) (model.UserProfile, error) {
	res, err := metabolic.Compute(in)
	if err != nil {
		return model.UserProfile{}, err
	}

	existing, err := s.Current()
	if err != nil {
		return model.UserProfile{}, err
	}

	now := s.now().UTC()
	p := model.UserProfile{
		ID:                 model.ProfileID,
		WeightKg:           in.WeightKg,
		HeightCm:           in.HeightCm,
		Age:                in.Age,
		Sex:                in.Sex,
		ActivityMultiplier: in.ActivityMultiplier,
		ActivityLabel:      res.ActivityLabel,
		Goal:               in.Goal,
		DietType:           in.DietType,
		BMR:                res.BMR,
		TDEE:               res.TDEE,
		TargetCalories:     res.TargetCalories,
		TargetMacros:       res.TargetMacros,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if existing != nil {
		p.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.SaveProfile(p); err != nil {
		return model.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	s.log.Info("profile saved",
		zap.Int("tdee", p.TDEE),
		zap.Int("target_calories", p.TargetCalories),
		zap.String("diet", string(p.DietType)),
	)
	return p, nil
}

// Delete removes the profile. Objectives drop back to zero.
func (s *Service) Delete() error {
	if err := s.repo.DeleteProfile(model.ProfileID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	s.log.Info("profile deleted")
	return nil
}

// Objectives returns the personal targets, or zero objectives when no
// profile exists.
func (s *Service) Objectives() (model.Objectives, error) {
	p, err := s.Current()
	if err != nil {
		return model.Objectives{}, err
	}
	if p == nil {
		return model.Objectives{}, nil
	}
	return p.Objectives(), nil
}

// InputOf returns the editable fields of p, for prefilling a form.
func InputOf(p model.UserProfile) metabolic.Input {
	return metabolic.Input{
		WeightKg:           p.WeightKg,
		HeightCm:           p.HeightCm,
		Age:                p.Age,
		Sex:                p.Sex,
		ActivityMultiplier: p.ActivityMultiplier,
		Goal:               p.Goal,
		DietType:           p.DietType,
	}
}
