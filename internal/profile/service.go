// Package profile reads and writes user profiles. Unlike record operations,
// profile operations have no local fallback: remote failures propagate to
// the caller, who surfaces them to the user.
package profile

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

// RemoteProfiles is the profile surface of the remote client.
type RemoteProfiles interface {
	GetProfile(ctx context.Context, userID string) (record.Profile, error)
	PutProfile(ctx context.Context, p record.Profile) error
}

// Service wraps profile access with derived health figures.
type Service struct {
	remote RemoteProfiles
	logger *zap.Logger
}

// NewService creates a profile service.
func NewService(remote RemoteProfiles, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{remote: remote, logger: logger}
}

// Get reads the user's profile from the remote store.
func (s *Service) Get(ctx context.Context, userID string) (record.Profile, error) {
	p, err := s.remote.GetProfile(ctx, userID)
	if err != nil {
		return record.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Save validates and writes the user's profile to the remote store.
func (s *Service) Save(ctx context.Context, p record.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.remote.PutProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.logger.Info("profile saved", zap.String("user", p.UserID))
	return nil
}

// BMI computes body mass index from the profile, 0 when underspecified.
func BMI(p record.Profile) float64 {
	if p.HeightCM <= 0 || p.WeightKG <= 0 {
		return 0
	}
	m := p.HeightCM / 100
	return math.Round(p.WeightKG/(m*m)*10) / 10
}

// DailyWaterTargetML suggests a daily water intake from weight and activity
// level. Informational only, not medical guidance.
func DailyWaterTargetML(p record.Profile) int {
	if p.WeightKG <= 0 {
		return 0
	}
	base := p.WeightKG * 33 // ~33 ml per kg
	switch p.ActivityLevel {
	case "light":
		base *= 1.05
	case "moderate":
		base *= 1.15
	case "active":
		base *= 1.3
	}
	return int(math.Round(base/50) * 50)
}
