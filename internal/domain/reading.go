package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Reading represents a single blood-pressure measurement as confirmed by the
// user. Systolic and diastolic are always present and positive; pulse is
// optional. Readings are never mutated in place: edits replace the full record.
type Reading struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	Systolic        int             `json:"systolic"`
	Diastolic       int             `json:"diastolic"`
	Pulse           *int            `json:"pulse,omitempty"`
	BodyPosition    BodyPosition    `json:"body_position"`
	ExerciseContext ExerciseContext `json:"exercise_context"`
	Symptoms        []Symptom       `json:"symptoms,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Validate ensures the reading meets the data-model invariants before it
// enters the store or the classification pipeline.
func (r *Reading) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reading validation: %w", errors.New("ID is required"))
	}

	if r.Timestamp.IsZero() {
		return fmt.Errorf("reading validation: %w", errors.New("timestamp is required"))
	}

	if r.Systolic <= 0 {
		return fmt.Errorf("reading validation: %w", errors.New("systolic must be positive"))
	}

	if r.Diastolic <= 0 {
		return fmt.Errorf("reading validation: %w", errors.New("diastolic must be positive"))
	}

	if r.Pulse != nil && *r.Pulse <= 0 {
		return fmt.Errorf("reading validation: %w", errors.New("pulse must be positive when present"))
	}

	if !r.BodyPosition.IsValid() {
		return fmt.Errorf("reading validation: %w", ErrInvalidBodyPosition)
	}

	if !r.ExerciseContext.IsValid() {
		return fmt.Errorf("reading validation: %w", ErrInvalidExerciseContext)
	}

	if err := validateSymptoms(r.Symptoms); err != nil {
		return fmt.Errorf("reading validation: %w", err)
	}

	return nil
}

// validateSymptoms enforces the sentinel invariant: "None" never appears
// alongside other symptoms, and every value is a known symptom.
func validateSymptoms(symptoms []Symptom) error {
	for _, s := range symptoms {
		if !s.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSymptom, s)
		}
		if s == SymptomNone && len(symptoms) > 1 {
			return ErrSymptomNoneConflict
		}
	}
	return nil
}

// HasSymptom reports whether the reading lists the given symptom.
func (r *Reading) HasSymptom(symptom Symptom) bool {
	for _, s := range r.Symptoms {
		if s == symptom {
			return true
		}
	}
	return false
}

// LogFields returns structured logging fields for audit trails.
func (r *Reading) LogFields() map[string]any {
	fields := map[string]any{
		"reading_id":       r.ID,
		"systolic":         r.Systolic,
		"diastolic":        r.Diastolic,
		"body_position":    string(r.BodyPosition),
		"exercise_context": string(r.ExerciseContext),
	}
	if r.Pulse != nil {
		fields["pulse"] = *r.Pulse
	}
	return fields
}

// UserProfile holds the optional per-user context forwarded to trend
// analysis. Absent fields are omitted from any downstream payload.
type UserProfile struct {
	Age               *int      `json:"age,omitempty"`
	WeightLbs         *float64  `json:"weight_lbs,omitempty"`
	Gender            *string   `json:"gender,omitempty"`
	RaceEthnicity     *string   `json:"race_ethnicity,omitempty"`
	MedicalConditions []string  `json:"medical_conditions,omitempty"`
	Medications       *string   `json:"medications,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks the plausibility bounds of the profile fields that are set.
func (p *UserProfile) Validate() error {
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 130) {
		return fmt.Errorf("profile validation: %w", errors.New("age out of range"))
	}
	if p.WeightLbs != nil && *p.WeightLbs <= 0 {
		return fmt.Errorf("profile validation: %w", errors.New("weight must be positive"))
	}
	return nil
}

// IsEmpty reports whether no profile field is set.
func (p *UserProfile) IsEmpty() bool {
	return p.Age == nil && p.WeightLbs == nil && p.Gender == nil &&
		p.RaceEthnicity == nil && len(p.MedicalConditions) == 0 && p.Medications == nil
}

// SortReadingsByRecency orders readings most recent first, in place.
// Ties break on ID for a stable order.
func SortReadingsByRecency(readings []*Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		if readings[i].Timestamp.Equal(readings[j].Timestamp) {
			return readings[i].ID > readings[j].ID
		}
		return readings[i].Timestamp.After(readings[j].Timestamp)
	})
}
