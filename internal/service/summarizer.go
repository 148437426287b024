package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/bp-trend-server/internal/domain"
)

// Defaults for the trend analysis window and memoization cache.
const (
	DefaultWindowDays    = 30
	DefaultMemoCacheSize = 128

	// timestampLayout is the human-readable form readings carry in the
	// generator payload.
	timestampLayout = "Jan 2, 2006 3:04 PM"
)

// DefaultEngagementSuggestion closes every suggestion list; the last entries
// are reserved for further-engagement prompts.
const DefaultEngagementSuggestion = "Keep logging readings regularly to improve future trend analyses."

// TrendSummarizer orchestrates trend analysis: it windows and sorts readings,
// builds the generator payload, overlays deterministic flags, and enforces
// the disclaimer invariant on every outcome, including failures.
//
// The summarizer is stateless per invocation apart from an LRU memo keyed by
// the windowed input, so re-running after an unrelated UI event never
// re-invokes the generator.
type TrendSummarizer struct {
	logger     *logrus.Logger
	generator  domain.TrendGenerator
	categories *CategoryClassifier
	pulses     *PulseClassifier
	aggregator *FlagAggregator
	windowDays int
	memo       *lru.Cache
	now        func() time.Time
}

// SummarizerOption is a functional option for TrendSummarizer.
type SummarizerOption func(*TrendSummarizer)

// WithWindowDays overrides the analysis window length.
func WithWindowDays(days int) SummarizerOption {
	return func(s *TrendSummarizer) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithOrderingPolicy selects the category rule ordering policy.
func WithOrderingPolicy(policy domain.OrderingPolicy) SummarizerOption {
	return func(s *TrendSummarizer) {
		s.categories = NewCategoryClassifier(policy)
		s.aggregator = NewFlagAggregator(s.categories, s.pulses)
	}
}

// WithMemoCacheSize overrides the memoization cache capacity.
func WithMemoCacheSize(size int) SummarizerOption {
	return func(s *TrendSummarizer) {
		if size > 0 {
			if cache, err := lru.New(size); err == nil {
				s.memo = cache
			}
		}
	}
}

// WithClock injects a clock, used by tests to pin the window boundary.
func WithClock(now func() time.Time) SummarizerOption {
	return func(s *TrendSummarizer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTrendSummarizer creates a trend summarizer over the given generator.
func NewTrendSummarizer(logger *logrus.Logger, generator domain.TrendGenerator, opts ...SummarizerOption) (*TrendSummarizer, error) {
	memo, err := lru.New(DefaultMemoCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating memo cache: %w", err)
	}

	categories := NewCategoryClassifier(domain.DefaultOrderingPolicy)
	pulses := NewPulseClassifier()

	s := &TrendSummarizer{
		logger:     logger,
		generator:  generator,
		categories: categories,
		pulses:     pulses,
		aggregator: NewFlagAggregator(categories, pulses),
		windowDays: DefaultWindowDays,
		memo:       memo,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Analyze runs a trend analysis over the readings and optional profile.
// An empty analysis window produces a canned fail-soft result without any
// external call. A generator failure is returned as an AnalysisError whose
// message carries the disclaimer; it is never retried here.
func (s *TrendSummarizer) Analyze(ctx context.Context, readings []*domain.Reading, profile *domain.UserProfile) (*domain.TrendAnalysisResult, error) {
	window := s.windowReadings(readings)

	if len(window) == 0 {
		s.logger.WithField("window_days", s.windowDays).Info("No readings in analysis window, returning canned result")
		return s.emptyWindowResult(), nil
	}

	key := memoKey(window, profile)
	if cached, ok := s.memo.Get(key); ok {
		if result, ok := cached.(*domain.TrendAnalysisResult); ok {
			s.logger.WithField("readings", len(window)).Debug("Trend analysis served from memo cache")
			return result, nil
		}
	}

	request := s.buildRequest(window, profile)

	startTime := s.now()
	response, err := s.generator.GenerateTrendSummary(ctx, request)
	if err != nil {
		s.logger.WithError(err).Error("Trend generation call failed")
		return nil, domain.NewAnalysisError(err)
	}

	result := s.postProcess(window, response)

	s.memo.Add(key, result)

	s.logger.WithFields(logrus.Fields{
		"readings":        len(window),
		"flags":           len(result.Flags),
		"suggestions":     len(result.Suggestions),
		"processing_time": s.now().Sub(startTime),
	}).Info("Trend analysis completed")

	return result, nil
}

// windowReadings filters to the analysis window and sorts most recent first.
// The input slice is not modified.
func (s *TrendSummarizer) windowReadings(readings []*domain.Reading) []*domain.Reading {
	cutoff := s.now().AddDate(0, 0, -s.windowDays)

	window := make([]*domain.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Timestamp.After(cutoff) {
			window = append(window, r)
		}
	}

	domain.SortReadingsByRecency(window)
	return window
}

// emptyWindowResult is the fail-soft outcome when the window has no readings.
func (s *TrendSummarizer) emptyWindowResult() *domain.TrendAnalysisResult {
	summary := fmt.Sprintf("No recent readings in the last %d days to analyze.", s.windowDays)
	suggestion := fmt.Sprintf("Add more readings to get a trend analysis based on the last %d days.", s.windowDays)

	return &domain.TrendAnalysisResult{
		Summary:     normalizeDisclaimer(summary),
		Flags:       []string{},
		Suggestions: []string{suggestion},
		GeneratedAt: s.now(),
	}
}

// buildRequest assembles the generator payload: human-formatted timestamps,
// deterministic classification labels, and profile fields only when set.
func (s *TrendSummarizer) buildRequest(window []*domain.Reading, profile *domain.UserProfile) *domain.TrendRequest {
	payload := make([]domain.TrendReading, 0, len(window))
	for _, r := range window {
		tr := domain.TrendReading{
			TakenAt:         r.Timestamp.Format(timestampLayout),
			Systolic:        r.Systolic,
			Diastolic:       r.Diastolic,
			Pulse:           r.Pulse,
			BodyPosition:    string(r.BodyPosition),
			ExerciseContext: string(r.ExerciseContext),
			Category:        s.categories.ClassifyReading(r).String(),
		}
		if label := s.pulses.ClassifyReading(r); label != domain.PulseNotApplicable {
			tr.PulseLabel = label.String()
		}
		for _, symptom := range r.Symptoms {
			if symptom != domain.SymptomNone {
				tr.Symptoms = append(tr.Symptoms, string(symptom))
			}
		}
		payload = append(payload, tr)
	}

	request := &domain.TrendRequest{Readings: payload}

	if profile != nil && !profile.IsEmpty() {
		request.Profile = &domain.TrendProfile{
			Age:               profile.Age,
			WeightLbs:         profile.WeightLbs,
			Gender:            profile.Gender,
			RaceEthnicity:     profile.RaceEthnicity,
			MedicalConditions: profile.MedicalConditions,
			Medications:       profile.Medications,
		}
	}

	return request
}

// postProcess merges the deterministic flag overlay with the generator
// output and enforces the disclaimer and suggestion invariants.
func (s *TrendSummarizer) postProcess(window []*domain.Reading, response *domain.TrendResponse) *domain.TrendAnalysisResult {
	overlay := s.aggregator.Aggregate(window)

	// Missing arrays default to empty, never nil.
	flags := append([]string{}, overlay.Flags...)
	for _, f := range response.Flags {
		if !containsString(flags, f) {
			flags = append(flags, f)
		}
	}

	suggestions := make([]string, 0, len(response.Suggestions)+2)
	if overlay.ImmediateAttention {
		suggestions = append(suggestions, ImmediateAttentionSuggestion)
	}
	for _, sg := range response.Suggestions {
		if !containsString(suggestions, sg) {
			suggestions = append(suggestions, sg)
		}
	}
	if !containsString(suggestions, DefaultEngagementSuggestion) {
		suggestions = append(suggestions, DefaultEngagementSuggestion)
	}

	return &domain.TrendAnalysisResult{
		Summary:     normalizeDisclaimer(response.Summary),
		Flags:       flags,
		Suggestions: suggestions,
		GeneratedAt: s.now(),
	}
}

// normalizeDisclaimer guarantees the summary ends with the exact disclaimer
// sentence: any embedded occurrence is stripped and the disclaimer is
// re-appended after sentence-terminating punctuation. Idempotent.
func normalizeDisclaimer(text string) string {
	text = strings.ReplaceAll(text, domain.Disclaimer, "")
	text = strings.TrimSpace(text)

	if text == "" {
		return domain.Disclaimer
	}

	if !hasSentenceTerminator(text) {
		text += "."
	}

	return text + " " + domain.Disclaimer
}

func hasSentenceTerminator(text string) bool {
	for _, suffix := range []string{".", "!", "?", "…"} {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// memoKey hashes the windowed readings plus profile into a cache key.
func memoKey(window []*domain.Reading, profile *domain.UserProfile) string {
	payload, err := json.Marshal(struct {
		Readings []*domain.Reading   `json:"readings"`
		Profile  *domain.UserProfile `json:"profile,omitempty"`
	}{Readings: window, Profile: profile})
	if err != nil {
		// Marshal of these types cannot fail; fall back to an empty key.
		return ""
	}

	hash := sha256.Sum256(payload)
	return fmt.Sprintf("trend:%x", hash[:12])
}
