package domain

import (
	"time"
)

// Disclaimer is the exact sentence every trend summary must end with,
// including summaries produced on failure paths.
const Disclaimer = "⚠️ This is not medical advice. Consult a healthcare professional for any concerns."

// TrendAnalysisResult is the outcome of a trend analysis over the recent
// reading window. It is derived state: recomputed whenever the reading set or
// profile changes, cached but never authoritative.
type TrendAnalysisResult struct {
	Summary     string    `json:"summary"`
	Flags       []string  `json:"flags"`
	Suggestions []string  `json:"suggestions"`
	GeneratedAt time.Time `json:"generated_at"`
}

// TrendRequest is the structured payload handed to the external
// natural-language generator. Timestamps are pre-formatted for humans and
// profile fields are present only when the user supplied them.
type TrendRequest struct {
	Readings []TrendReading `json:"readings"`
	Profile  *TrendProfile  `json:"profile,omitempty"`
}

// TrendReading is a reading as presented to the generator, annotated with the
// deterministic classification labels so the prompt and the overlay logic
// agree on the guideline table.
type TrendReading struct {
	TakenAt         string   `json:"taken_at"`
	Systolic        int      `json:"systolic"`
	Diastolic       int      `json:"diastolic"`
	Pulse           *int     `json:"pulse,omitempty"`
	BodyPosition    string   `json:"body_position"`
	ExerciseContext string   `json:"exercise_context"`
	Symptoms        []string `json:"symptoms,omitempty"`
	Category        string   `json:"category"`
	PulseLabel      string   `json:"pulse_label,omitempty"`
}

// TrendProfile carries the optional user context. Absent fields are omitted
// from the serialized payload rather than sent as null.
type TrendProfile struct {
	Age               *int     `json:"age,omitempty"`
	WeightLbs         *float64 `json:"weight_lbs,omitempty"`
	Gender            *string  `json:"gender,omitempty"`
	RaceEthnicity     *string  `json:"race_ethnicity,omitempty"`
	MedicalConditions []string `json:"medical_conditions,omitempty"`
	Medications       *string  `json:"medications,omitempty"`
}

// TrendResponse is the raw structured output of the external generator.
// Flags and Suggestions may be nil when the generator omits them; the
// summarizer defaults them to empty lists.
type TrendResponse struct {
	Summary     string   `json:"summary"`
	Flags       []string `json:"flags"`
	Suggestions []string `json:"suggestions"`
}
