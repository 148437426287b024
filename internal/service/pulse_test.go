package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bp-trend-server/internal/domain"
)

func TestPulseClassifier_Classify(t *testing.T) {
	c := NewPulseClassifier()

	tests := []struct {
		name    string
		pulse   *int
		context domain.ExerciseContext
		want    domain.PulseLabel
	}{
		{"nil pulse", nil, domain.ContextResting, domain.PulseNotApplicable},
		{"tachycardia at rest", intPtr(110), domain.ContextResting, domain.PulseTachycardia},
		{"tachycardia boundary at rest", intPtr(101), domain.ContextResting, domain.PulseTachycardia},
		{"normal at 100 resting", intPtr(100), domain.ContextResting, domain.PulseNormal},
		{"bradycardia at rest", intPtr(55), domain.ContextResting, domain.PulseBradycardia},
		{"normal at 60 resting", intPtr(60), domain.ContextResting, domain.PulseNormal},
		{"pre-exercise counts as rest", intPtr(110), domain.ContextPreExercise, domain.PulseTachycardia},
		{"elevated post-exercise is normal", intPtr(110), domain.ContextPostExercise, domain.PulseNormal},
		{"elevated during exercise is normal", intPtr(150), domain.ContextDuringExercise, domain.PulseNormal},
		{"extreme pulse during exercise", intPtr(185), domain.ContextDuringExercise, domain.PulseTachycardia},
		{"low pulse post-exercise not bradycardia", intPtr(50), domain.ContextPostExercise, domain.PulseNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.pulse, tt.context))
		})
	}
}

func TestPulseClassifier_FlagWorthy(t *testing.T) {
	c := NewPulseClassifier()

	assert.True(t, c.FlagWorthy(domain.PulseTachycardia, domain.ContextResting))
	assert.True(t, c.FlagWorthy(domain.PulseBradycardia, domain.ContextPreExercise))
	assert.False(t, c.FlagWorthy(domain.PulseTachycardia, domain.ContextPostExercise))
	assert.False(t, c.FlagWorthy(domain.PulseNormal, domain.ContextResting))
	assert.False(t, c.FlagWorthy(domain.PulseNotApplicable, domain.ContextResting))
}

func intPtr(v int) *int { return &v }
