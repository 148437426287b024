package service

import (
	"github.com/bp-trend-server/internal/domain"
)

// Resting pulse thresholds in bpm.
const (
	TachycardiaThreshold = 100
	BradycardiaThreshold = 60

	// ExertionTachycardiaCeiling is the pulse above which even an exercise
	// context reads as Tachycardia. Below it, elevated pulse during or after
	// exercise is informational only and never drives a flag.
	ExertionTachycardiaCeiling = 180
)

// PulseClassifier maps a pulse measurement and its exercise context to a
// label. Like the category classifier it is total and pure.
type PulseClassifier struct{}

// NewPulseClassifier creates a pulse classifier.
func NewPulseClassifier() *PulseClassifier {
	return &PulseClassifier{}
}

// Classify returns the pulse label. Absent pulse always yields NotApplicable.
func (c *PulseClassifier) Classify(pulse *int, context domain.ExerciseContext) domain.PulseLabel {
	if pulse == nil {
		return domain.PulseNotApplicable
	}

	if !context.IsRestLike() {
		if *pulse > ExertionTachycardiaCeiling {
			return domain.PulseTachycardia
		}
		return domain.PulseNormal
	}

	switch {
	case *pulse > TachycardiaThreshold:
		return domain.PulseTachycardia
	case *pulse < BradycardiaThreshold:
		return domain.PulseBradycardia
	default:
		return domain.PulseNormal
	}
}

// ClassifyReading classifies the pulse of a stored reading record.
func (c *PulseClassifier) ClassifyReading(reading *domain.Reading) domain.PulseLabel {
	return c.Classify(reading.Pulse, reading.ExerciseContext)
}

// FlagWorthy reports whether the label should produce a flag for the given
// context. Tachycardia and Bradycardia only count at rest or pre-exercise.
func (c *PulseClassifier) FlagWorthy(label domain.PulseLabel, context domain.ExerciseContext) bool {
	if label != domain.PulseTachycardia && label != domain.PulseBradycardia {
		return false
	}
	return context.IsRestLike()
}
