package service

import (
	"github.com/bp-trend-server/internal/domain"
)

// CategoryClassifier maps a systolic/diastolic pair to its AHA/CDC guideline
// band. Classification is a total pure function: callers guarantee positive
// inputs, and anything the table does not cover falls through to N/A.
type CategoryClassifier struct {
	policy domain.OrderingPolicy
}

// NewCategoryClassifier creates a classifier with the given rule ordering
// policy. An invalid policy falls back to the default.
func NewCategoryClassifier(policy domain.OrderingPolicy) *CategoryClassifier {
	if !policy.IsValid() {
		policy = domain.DefaultOrderingPolicy
	}
	return &CategoryClassifier{policy: policy}
}

// Policy returns the ordering policy this classifier was built with.
func (c *CategoryClassifier) Policy() domain.OrderingPolicy {
	return c.policy
}

// Classify returns exactly one category for the pair. Rules are evaluated
// first match wins:
//
//	1. systolic < 90 OR diastolic < 60            -> Low
//	2. systolic < 120 AND diastolic < 80          -> Normal
//	3. 120 <= systolic <= 129 AND diastolic < 80  -> Elevated
//	4. (130 <= systolic <= 139) OR (80 <= d <= 89) -> Stage 1
//	5. systolic >= 140 OR diastolic >= 90         -> Stage 2
//	6. systolic > 180 OR diastolic > 120          -> Crisis
//
// Under OrderingLegacy the chain runs exactly in that order, which makes rule
// 6 unreachable: rule 5 is strictly broader and returns early. Under
// OrderingCrisisFirst the crisis band is hoisted above both stage rules, since
// rule 4's diastolic arm could otherwise mask a crisis-level diastolic (for
// example 135/125).
func (c *CategoryClassifier) Classify(systolic, diastolic int) domain.Category {
	switch {
	case systolic < 90 || diastolic < 60:
		return domain.CategoryLow
	case systolic < 120 && diastolic < 80:
		return domain.CategoryNormal
	case systolic >= 120 && systolic <= 129 && diastolic < 80:
		return domain.CategoryElevated
	}

	if c.policy == domain.OrderingCrisisFirst && (systolic > 180 || diastolic > 120) {
		return domain.CategoryCrisis
	}

	if (systolic >= 130 && systolic <= 139) || (diastolic >= 80 && diastolic <= 89) {
		return domain.CategoryStage1
	}
	if systolic >= 140 || diastolic >= 90 {
		return domain.CategoryStage2
	}
	if systolic > 180 || diastolic > 120 {
		// Reachable only under OrderingLegacy, and then never taken: rule 5
		// already covered this range. Kept to mirror the documented table.
		return domain.CategoryCrisis
	}

	return domain.CategoryNA
}

// ClassifyReading classifies a stored reading record.
func (c *CategoryClassifier) ClassifyReading(reading *domain.Reading) domain.Category {
	return c.Classify(reading.Systolic, reading.Diastolic)
}
