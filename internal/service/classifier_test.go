package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bp-trend-server/internal/domain"
)

func TestCategoryClassifier_Classify(t *testing.T) {
	c := NewCategoryClassifier(domain.DefaultOrderingPolicy)

	tests := []struct {
		name      string
		systolic  int
		diastolic int
		want      domain.Category
	}{
		{"normal just under both thresholds", 119, 79, domain.CategoryNormal},
		{"elevated at systolic lower bound", 120, 79, domain.CategoryElevated},
		{"elevated at systolic upper bound", 129, 79, domain.CategoryElevated},
		{"stage 1 at systolic lower bound", 130, 79, domain.CategoryStage1},
		{"stage 1 via diastolic arm", 118, 85, domain.CategoryStage1},
		{"stage 2 at both thresholds", 140, 90, domain.CategoryStage2},
		{"stage 2 via systolic only", 145, 85, domain.CategoryStage2},
		{"low wins over high diastolic", 89, 100, domain.CategoryLow},
		{"low via diastolic", 110, 55, domain.CategoryLow},
		{"crisis via systolic", 181, 70, domain.CategoryCrisis},
		{"crisis via diastolic", 135, 125, domain.CategoryCrisis},
		{"crisis at both", 190, 130, domain.CategoryCrisis},
		{"boundary 180 is stage 2 not crisis", 180, 70, domain.CategoryStage2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.systolic, tt.diastolic))
		})
	}
}

func TestCategoryClassifier_LegacyOrdering(t *testing.T) {
	c := NewCategoryClassifier(domain.OrderingLegacy)

	// Under the legacy chain the stage rules run before the crisis band, so
	// crisis-level pairs land in a stage category instead.
	assert.Equal(t, domain.CategoryStage2, c.Classify(181, 70))
	assert.Equal(t, domain.CategoryStage1, c.Classify(135, 125))

	// The shared prefix of the chain is unaffected by the policy.
	assert.Equal(t, domain.CategoryNormal, c.Classify(119, 79))
	assert.Equal(t, domain.CategoryElevated, c.Classify(125, 75))
	assert.Equal(t, domain.CategoryLow, c.Classify(85, 70))
}

func TestCategoryClassifier_InvalidPolicyFallsBack(t *testing.T) {
	c := NewCategoryClassifier(domain.OrderingPolicy("nonsense"))

	assert.Equal(t, domain.DefaultOrderingPolicy, c.Policy())
	assert.Equal(t, domain.CategoryCrisis, c.Classify(135, 125))
}

func TestCategoryClassifier_Deterministic(t *testing.T) {
	c := NewCategoryClassifier(domain.DefaultOrderingPolicy)

	first := c.Classify(133, 84)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(133, 84))
	}
}
