package service

import (
	"fmt"
	"sort"

	"github.com/bp-trend-server/internal/domain"
)

// CrisisFlag is the flag emitted for a Hypertensive Crisis reading. It must
// be the first flag in any result that contains it.
const CrisisFlag = "Hypertensive Crisis: blood pressure above 180/120"

// ImmediateAttentionSuggestion is the suggestion a crisis flag forces to the
// front of the suggestion list.
const ImmediateAttentionSuggestion = "Seek immediate medical attention."

// postExerciseSuffix softens category labels for post-exercise readings.
// Advisory labeling only; the category itself is never reclassified.
const postExerciseSuffix = " (Post-Exercise)"

// FlagSet is the deterministic flag overlay derived from the most recent
// reading, ordered most severe first.
type FlagSet struct {
	Flags              []string
	ImmediateAttention bool
}

// FlagAggregator derives ordered flags from pre-classified readings.
// Ordering uses the typed severity ranking, not label matching.
type FlagAggregator struct {
	categories *CategoryClassifier
	pulses     *PulseClassifier
}

// NewFlagAggregator creates a flag aggregator over the given classifiers.
func NewFlagAggregator(categories *CategoryClassifier, pulses *PulseClassifier) *FlagAggregator {
	return &FlagAggregator{
		categories: categories,
		pulses:     pulses,
	}
}

type rankedFlag struct {
	label    string
	severity domain.Severity
}

// Aggregate produces the flag overlay for a reading list ordered most recent
// first. Only the most recent reading drives flags; older readings provide
// context to the generator, not to the deterministic overlay.
func (a *FlagAggregator) Aggregate(readings []*domain.Reading) *FlagSet {
	if len(readings) == 0 {
		return &FlagSet{Flags: []string{}}
	}

	latest := readings[0]
	category := a.categories.ClassifyReading(latest)

	if category == domain.CategoryCrisis {
		return &FlagSet{
			Flags:              append([]string{CrisisFlag}, a.pulseFlags(latest)...),
			ImmediateAttention: true,
		}
	}

	ranked := make([]rankedFlag, 0, 2)
	if category != domain.CategoryNA {
		ranked = append(ranked, rankedFlag{
			label:    a.categoryFlagLabel(latest, category),
			severity: category.Severity(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].severity > ranked[j].severity
	})

	flags := make([]string, 0, len(ranked)+1)
	for _, rf := range ranked {
		flags = append(flags, rf.label)
	}
	flags = append(flags, a.pulseFlags(latest)...)

	return &FlagSet{Flags: flags}
}

// categoryFlagLabel renders the category flag, softening Stage 1 and worse
// with an advisory suffix when the reading was taken post-exercise.
func (a *FlagAggregator) categoryFlagLabel(reading *domain.Reading, category domain.Category) string {
	label := category.String()
	if reading.ExerciseContext == domain.ContextPostExercise && category.Severity() >= domain.SeverityModerate {
		label += postExerciseSuffix
	}
	return label
}

// pulseFlags returns pulse-driven flags for the reading. Pulse flags follow
// BP flags and only apply when pulse is present and the context is
// Resting or PreExercise.
func (a *FlagAggregator) pulseFlags(reading *domain.Reading) []string {
	label := a.pulses.ClassifyReading(reading)
	if !a.pulses.FlagWorthy(label, reading.ExerciseContext) {
		return nil
	}
	return []string{fmt.Sprintf("%s: pulse %d bpm at rest", label, *reading.Pulse)}
}
