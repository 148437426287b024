package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bp-trend-server/internal/domain"
)

func newTestAggregator() *FlagAggregator {
	categories := NewCategoryClassifier(domain.DefaultOrderingPolicy)
	return NewFlagAggregator(categories, NewPulseClassifier())
}

func testReading(systolic, diastolic int, pulse *int, context domain.ExerciseContext) *domain.Reading {
	return &domain.Reading{
		ID:              "r-test",
		Timestamp:       time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Systolic:        systolic,
		Diastolic:       diastolic,
		Pulse:           pulse,
		BodyPosition:    domain.PositionSitting,
		ExerciseContext: context,
	}
}

func TestFlagAggregator_EmptyInput(t *testing.T) {
	fs := newTestAggregator().Aggregate(nil)

	require.NotNil(t, fs)
	assert.Empty(t, fs.Flags)
	assert.False(t, fs.ImmediateAttention)
}

func TestFlagAggregator_CrisisFirst(t *testing.T) {
	reading := testReading(185, 125, intPtr(112), domain.ContextResting)

	fs := newTestAggregator().Aggregate([]*domain.Reading{reading})

	require.NotEmpty(t, fs.Flags)
	assert.Equal(t, CrisisFlag, fs.Flags[0])
	assert.True(t, fs.ImmediateAttention)
	assert.Contains(t, fs.Flags, "Tachycardia: pulse 112 bpm at rest")
}

func TestFlagAggregator_CategoryAndPulseOrdering(t *testing.T) {
	reading := testReading(145, 92, intPtr(55), domain.ContextResting)

	fs := newTestAggregator().Aggregate([]*domain.Reading{reading})

	require.Len(t, fs.Flags, 2)
	assert.Equal(t, "Hypertension Stage 2", fs.Flags[0])
	assert.Equal(t, "Bradycardia: pulse 55 bpm at rest", fs.Flags[1])
	assert.False(t, fs.ImmediateAttention)
}

func TestFlagAggregator_PostExerciseSoftening(t *testing.T) {
	reading := testReading(145, 92, intPtr(110), domain.ContextPostExercise)

	fs := newTestAggregator().Aggregate([]*domain.Reading{reading})

	// The category flag gets the advisory suffix and the elevated pulse is
	// not flag-worthy in a post-exercise context.
	require.Len(t, fs.Flags, 1)
	assert.Equal(t, "Hypertension Stage 2 (Post-Exercise)", fs.Flags[0])
}

func TestFlagAggregator_NormalReadingStillLabeled(t *testing.T) {
	reading := testReading(115, 75, intPtr(70), domain.ContextResting)

	fs := newTestAggregator().Aggregate([]*domain.Reading{reading})

	require.Len(t, fs.Flags, 1)
	assert.Equal(t, "Normal", fs.Flags[0])
	assert.False(t, fs.ImmediateAttention)
}

func TestFlagAggregator_OnlyLatestReadingDrivesFlags(t *testing.T) {
	latest := testReading(118, 76, nil, domain.ContextResting)
	older := testReading(190, 130, nil, domain.ContextResting)
	older.Timestamp = latest.Timestamp.Add(-24 * time.Hour)

	fs := newTestAggregator().Aggregate([]*domain.Reading{latest, older})

	assert.NotContains(t, fs.Flags, CrisisFlag)
	assert.False(t, fs.ImmediateAttention)
}
