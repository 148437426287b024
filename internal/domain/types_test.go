package domain

import (
	"testing"
)

func TestCategoryConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    Category
		expected string
	}{
		{"Low", CategoryLow, "Low"},
		{"Normal", CategoryNormal, "Normal"},
		{"Elevated", CategoryElevated, "Elevated"},
		{"Stage 1", CategoryStage1, "Hypertension Stage 1"},
		{"Stage 2", CategoryStage2, "Hypertension Stage 2"},
		{"Crisis", CategoryCrisis, "Hypertensive Crisis"},
		{"N/A", CategoryNA, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}

	if Category("Stage 3").IsValid() {
		t.Error("Expected unknown category to be invalid")
	}
}

func TestCategorySeverityOrdering(t *testing.T) {
	ordered := []Category{
		CategoryNA,
		CategoryNormal,
		CategoryLow,
		CategoryElevated,
		CategoryStage1,
		CategoryStage2,
		CategoryCrisis,
	}

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.Severity() <= prev.Severity() {
			t.Errorf("Expected %s severity (%d) > %s severity (%d)",
				cur, cur.Severity(), prev, prev.Severity())
		}
	}
}

func TestCategoryRequiresImmediateAttention(t *testing.T) {
	if !CategoryCrisis.RequiresImmediateAttention() {
		t.Error("Expected Hypertensive Crisis to require immediate attention")
	}
	for _, c := range []Category{CategoryLow, CategoryNormal, CategoryElevated, CategoryStage1, CategoryStage2, CategoryNA} {
		if c.RequiresImmediateAttention() {
			t.Errorf("Expected %s not to require immediate attention", c)
		}
	}
}

func TestPulseLabelConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    PulseLabel
		expected string
	}{
		{"Normal", PulseNormal, "Normal"},
		{"Tachycardia", PulseTachycardia, "Tachycardia"},
		{"Bradycardia", PulseBradycardia, "Bradycardia"},
		{"NotApplicable", PulseNotApplicable, "NotApplicable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}
}

func TestExerciseContextIsRestLike(t *testing.T) {
	tests := []struct {
		context  ExerciseContext
		restLike bool
	}{
		{ContextResting, true},
		{ContextPreExercise, true},
		{ContextDuringExercise, false},
		{ContextPostExercise, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.context), func(t *testing.T) {
			if tt.context.IsRestLike() != tt.restLike {
				t.Errorf("Expected IsRestLike()=%v for %s", tt.restLike, tt.context)
			}
		})
	}
}

func TestOrderingPolicy(t *testing.T) {
	if DefaultOrderingPolicy != OrderingCrisisFirst {
		t.Errorf("Expected default ordering policy to be crisis-first, got %s", DefaultOrderingPolicy)
	}
	if !OrderingLegacy.IsValid() || !OrderingCrisisFirst.IsValid() {
		t.Error("Expected both ordering policies to be valid")
	}
	if OrderingPolicy("random").IsValid() {
		t.Error("Expected unknown ordering policy to be invalid")
	}
}
