package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

type fakeRemote struct {
	profiles map[string]record.Profile
	err      error
}

func (f *fakeRemote) GetProfile(_ context.Context, userID string) (record.Profile, error) {
	if f.err != nil {
		return record.Profile{}, f.err
	}
	return f.profiles[userID], nil
}

func (f *fakeRemote) PutProfile(_ context.Context, p record.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[p.UserID] = p
	return nil
}

func TestSaveAndGet(t *testing.T) {
	rem := &fakeRemote{profiles: make(map[string]record.Profile)}
	s := NewService(rem, nil)

	p := record.Profile{UserID: "u-1", DisplayName: "Ada", HeightCM: 170, WeightKG: 60, Age: 30, ActivityLevel: "moderate"}
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Ada" || got.HeightCM != 170 {
		t.Errorf("got %+v", got)
	}
}

func TestRemoteErrorPropagates(t *testing.T) {
	// Profiles have no fallback path: the error must reach the caller.
	rem := &fakeRemote{err: errors.New("unavailable")}
	s := NewService(rem, nil)

	if _, err := s.Get(context.Background(), "u-1"); err == nil {
		t.Error("Get() error = nil, want propagated remote error")
	}
	if err := s.Save(context.Background(), record.Profile{UserID: "u-1"}); err == nil {
		t.Error("Save() error = nil, want propagated remote error")
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := NewService(&fakeRemote{profiles: make(map[string]record.Profile)}, nil)
	if err := s.Save(context.Background(), record.Profile{}); err == nil {
		t.Error("Save() accepted profile without user id")
	}
}

func TestBMI(t *testing.T) {
	p := record.Profile{HeightCM: 170, WeightKG: 65}
	if got := BMI(p); got != 22.5 {
		t.Errorf("BMI = %v, want 22.5", got)
	}
	if got := BMI(record.Profile{}); got != 0 {
		t.Errorf("BMI of empty profile = %v, want 0", got)
	}
}

func TestDailyWaterTarget(t *testing.T) {
	p := record.Profile{WeightKG: 60, ActivityLevel: "active"}
	got := DailyWaterTargetML(p)
	if got < 2000 || got > 3000 {
		t.Errorf("target = %d, want in plausible range", got)
	}
	if got%50 != 0 {
		t.Errorf("target = %d, want rounded to 50ml", got)
	}
	if DailyWaterTargetML(record.Profile{}) != 0 {
		t.Error("target for empty profile should be 0")
	}
}
