package record

import (
	"errors"
	"fmt"
)

// Kind identifies the type of a user-generated record.
type Kind string

const (
	KindWater      Kind = "water"
	KindMedication Kind = "medication"
	KindMood       Kind = "mood"
	KindChat       Kind = "chat"
)

// Kinds lists every record kind handled by the sync layer.
var Kinds = []Kind{KindWater, KindMedication, KindMood, KindChat}

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindWater, KindMedication, KindMood, KindChat:
		return true
	}
	return false
}

// Record is a single user-generated item. Exactly one payload field must be
// set, and it must match Kind. Offline-created records carry a
// timestamp-derived ID (see LocalID); records created online carry a
// store-assigned UUID.
type Record struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Kind      Kind   `json:"kind"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds

	Water      *WaterLog        `json:"water,omitempty"`
	Medication *MedicationEntry `json:"medication,omitempty"`
	Mood       *MoodEntry       `json:"mood,omitempty"`
	Chat       *ChatMessage     `json:"chat,omitempty"`
}

// WaterLog records a single water intake.
type WaterLog struct {
	AmountML int `json:"amountMl"`
}

// MedicationEntry records a tracked medication.
type MedicationEntry struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// MoodEntry records a mood/symptom check-in.
type MoodEntry struct {
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity,omitempty"` // 1..10
	Note      string `json:"note,omitempty"`
}

// ChatMessage records one side of an assistant conversation.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

var (
	ErrMissingUser    = errors.New("record: missing user id")
	ErrUnknownKind    = errors.New("record: unknown kind")
	ErrPayloadMissing = errors.New("record: payload does not match kind")
)

// Validate checks the record envelope and that the payload matches Kind.
// Called at the store boundary; records never enter a store unvalidated.
func (r *Record) Validate() error {
	if r.UserID == "" {
		return ErrMissingUser
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	if n := r.payloadCount(); n != 1 {
		return fmt.Errorf("%w: %d payloads set", ErrPayloadMissing, n)
	}
	switch r.Kind {
	case KindWater:
		if r.Water == nil {
			return ErrPayloadMissing
		}
		if r.Water.AmountML <= 0 {
			return errors.New("record: water amount must be positive")
		}
	case KindMedication:
		if r.Medication == nil {
			return ErrPayloadMissing
		}
		if r.Medication.Name == "" {
			return errors.New("record: medication name required")
		}
	case KindMood:
		if r.Mood == nil {
			return ErrPayloadMissing
		}
		if r.Mood.Mood == "" {
			return errors.New("record: mood value required")
		}
	case KindChat:
		if r.Chat == nil {
			return ErrPayloadMissing
		}
		if r.Chat.Text == "" {
			return errors.New("record: chat text required")
		}
	}
	return nil
}

func (r *Record) payloadCount() int {
	n := 0
	if r.Water != nil {
		n++
	}
	if r.Medication != nil {
		n++
	}
	if r.Mood != nil {
		n++
	}
	if r.Chat != nil {
		n++
	}
	return n
}
