// Package domain contains core business entities and types for blood-pressure
// reading classification and trend analysis following AHA/CDC guideline bands.
//
// Reference: Whelton et al. (2018) 2017 ACC/AHA Guideline for the Prevention,
// Detection, Evaluation, and Management of High Blood Pressure in Adults.
// Hypertension. 71(6):e13-e115. doi: 10.1161/HYP.0000000000000065
package domain

// Category represents the clinical blood-pressure category of a single reading.
// These categories follow the AHA/CDC guideline bands and represent the clinical
// significance of a systolic/diastolic pair.
type Category string

const (
	CategoryLow      Category = "Low"
	CategoryNormal   Category = "Normal"
	CategoryElevated Category = "Elevated"
	CategoryStage1   Category = "Hypertension Stage 1"
	CategoryStage2   Category = "Hypertension Stage 2"
	CategoryCrisis   Category = "Hypertensive Crisis"
	CategoryNA       Category = "N/A"
)

// Severity orders categories by clinical urgency. Flag ordering uses this
// explicit ranking instead of substring matching on display labels.
type Severity int

const (
	SeverityNone     Severity = iota // N/A
	SeverityRoutine                  // Normal
	SeverityLow                      // Low (hypotension)
	SeverityGuarded                  // Elevated
	SeverityModerate                 // Hypertension Stage 1
	SeverityHigh                     // Hypertension Stage 2
	SeverityCritical                 // Hypertensive Crisis
)

// PulseLabel represents the classification of a pulse measurement.
type PulseLabel string

const (
	PulseNormal        PulseLabel = "Normal"
	PulseTachycardia   PulseLabel = "Tachycardia"
	PulseBradycardia   PulseLabel = "Bradycardia"
	PulseNotApplicable PulseLabel = "NotApplicable"
)

// BodyPosition represents the body position during a measurement.
type BodyPosition string

const (
	PositionSitting   BodyPosition = "Sitting"
	PositionStanding  BodyPosition = "Standing"
	PositionLyingDown BodyPosition = "LyingDown"
	PositionOther     BodyPosition = "Other"
)

// ExerciseContext represents the exercise context of a measurement.
type ExerciseContext string

const (
	ContextResting        ExerciseContext = "Resting"
	ContextPreExercise    ExerciseContext = "PreExercise"
	ContextDuringExercise ExerciseContext = "DuringExercise"
	ContextPostExercise   ExerciseContext = "PostExercise"
)

// Symptom represents a reported symptom accompanying a reading.
// SymptomNone is a sentinel and must never appear alongside other values.
type Symptom string

const (
	SymptomNone              Symptom = "None"
	SymptomHeadache          Symptom = "Headache"
	SymptomDizziness         Symptom = "Dizziness"
	SymptomBlurredVision     Symptom = "Blurred Vision"
	SymptomChestPain         Symptom = "Chest Pain"
	SymptomShortnessOfBreath Symptom = "Shortness of Breath"
	SymptomNosebleed         Symptom = "Nosebleed"
	SymptomFatigue           Symptom = "Fatigue"
	SymptomNausea            Symptom = "Nausea"
)

// OrderingPolicy selects how the category table resolves the overlap between
// the Stage 2 and Crisis rules. The observed source evaluated Stage 2 first,
// which makes Crisis unreachable; the corrected ordering checks Crisis first.
type OrderingPolicy string

const (
	// OrderingLegacy reproduces the original early-return chain: Stage 2 is
	// checked before Crisis, so systolic 190 classifies as Stage 2.
	OrderingLegacy OrderingPolicy = "legacy-order"

	// OrderingCrisisFirst checks the Crisis band before Stage 2, preserving
	// clinical intent for readings above 180/120.
	OrderingCrisisFirst OrderingPolicy = "crisis-first"
)

// DefaultOrderingPolicy is the policy used unless a caller opts into the
// legacy behavior.
const DefaultOrderingPolicy = OrderingCrisisFirst

// IsValid validates that the Category is one of the guideline bands.
func (c Category) IsValid() bool {
	switch c {
	case CategoryLow, CategoryNormal, CategoryElevated, CategoryStage1, CategoryStage2, CategoryCrisis, CategoryNA:
		return true
	default:
		return false
	}
}

// String returns the display label of the category.
func (c Category) String() string {
	return string(c)
}

// Severity returns the clinical urgency ranking of the category.
func (c Category) Severity() Severity {
	switch c {
	case CategoryCrisis:
		return SeverityCritical
	case CategoryStage2:
		return SeverityHigh
	case CategoryStage1:
		return SeverityModerate
	case CategoryElevated:
		return SeverityGuarded
	case CategoryLow:
		return SeverityLow
	case CategoryNormal:
		return SeverityRoutine
	default:
		return SeverityNone
	}
}

// RequiresImmediateAttention reports whether the category drives the
// "immediate medical attention" suggestion in trend output.
func (c Category) RequiresImmediateAttention() bool {
	return c == CategoryCrisis
}

// LogFields returns structured logging fields for audit trails.
func (c Category) LogFields() map[string]any {
	return map[string]any{
		"category":            string(c),
		"severity":            int(c.Severity()),
		"is_valid":            c.IsValid(),
		"immediate_attention": c.RequiresImmediateAttention(),
	}
}

// IsValid validates the pulse label.
func (pl PulseLabel) IsValid() bool {
	switch pl {
	case PulseNormal, PulseTachycardia, PulseBradycardia, PulseNotApplicable:
		return true
	default:
		return false
	}
}

// String returns the display label of the pulse classification.
func (pl PulseLabel) String() string {
	return string(pl)
}

// IsValid validates the body position.
func (bp BodyPosition) IsValid() bool {
	switch bp {
	case PositionSitting, PositionStanding, PositionLyingDown, PositionOther:
		return true
	default:
		return false
	}
}

// IsValid validates the exercise context.
func (ec ExerciseContext) IsValid() bool {
	switch ec {
	case ContextResting, ContextPreExercise, ContextDuringExercise, ContextPostExercise:
		return true
	default:
		return false
	}
}

// IsRestLike reports whether pulse thresholds apply at face value in this
// context. Elevated pulse during or after exercise is informational only.
func (ec ExerciseContext) IsRestLike() bool {
	return ec == ContextResting || ec == ContextPreExercise
}

// IsValid validates the symptom value.
func (s Symptom) IsValid() bool {
	switch s {
	case SymptomNone, SymptomHeadache, SymptomDizziness, SymptomBlurredVision,
		SymptomChestPain, SymptomShortnessOfBreath, SymptomNosebleed,
		SymptomFatigue, SymptomNausea:
		return true
	default:
		return false
	}
}

// IsValid validates the ordering policy.
func (op OrderingPolicy) IsValid() bool {
	switch op {
	case OrderingLegacy, OrderingCrisisFirst:
		return true
	default:
		return false
	}
}
