package record

import "errors"

// Profile holds a user's health attributes. Profiles are read and written
// directly against the remote store; they have no local fallback path.
type Profile struct {
	UserID        string  `json:"userId"`
	DisplayName   string  `json:"displayName"`
	HeightCM      float64 `json:"heightCm"`
	WeightKG      float64 `json:"weightKg"`
	Age           int     `json:"age"`
	ActivityLevel string  `json:"activityLevel"` // sedentary, light, moderate, active
}

// Validate checks profile fields that the rest of the agent relies on.
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return errors.New("profile: missing user id")
	}
	if p.HeightCM < 0 || p.WeightKG < 0 || p.Age < 0 {
		return errors.New("profile: negative health attribute")
	}
	return nil
}
