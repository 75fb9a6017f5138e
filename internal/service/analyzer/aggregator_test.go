package analyzer

import (
	"math"
	"testing"

	"github.com/coursebridge/originality-service/internal/models"
)

func newTestAggregator() ScoreAggregator {
	return NewScoreAggregator(AggregatorConfig{
		TopSources:    3,
		SourceWeight:  0.6,
		PatternWeight: 0.4,
	})
}

func TestAggregateEmpty(t *testing.T) {
	if got := newTestAggregator().Aggregate(nil, nil); got != 0 {
		t.Errorf("Aggregate(nil, nil) = %f, want 0", got)
	}
}

func TestAggregateTopSourcesOnly(t *testing.T) {
	sources := []models.MatchedSource{
		{Similarity: 10},
		{Similarity: 90},
		{Similarity: 70},
		{Similarity: 80},
	}

	// Top three of 90, 80, 70 average to 80.
	got := newTestAggregator().Aggregate(sources, nil)
	if math.Abs(got-48.0) > 1e-9 {
		t.Errorf("Aggregate = %f, want 48.0", got)
	}
}

func TestAggregateSingleSource(t *testing.T) {
	got := newTestAggregator().Aggregate([]models.MatchedSource{{Similarity: 50}}, nil)
	if math.Abs(got-30.0) > 1e-9 {
		t.Errorf("Aggregate = %f, want 30.0", got)
	}
}

func TestAggregatePatternsOnly(t *testing.T) {
	patterns := []models.SuspiciousPattern{
		{Confidence: 1.0},
		{Confidence: 0.8},
	}

	got := newTestAggregator().Aggregate(nil, patterns)
	if math.Abs(got-36.0) > 1e-9 {
		t.Errorf("Aggregate = %f, want 36.0", got)
	}
}

func TestAggregateClampedAtHundred(t *testing.T) {
	// Default weights sum to 1, so the cap needs heavier weights to be
	// reachable: 100*0.8 + 100*0.4 = 120 before clamping.
	agg := NewScoreAggregator(AggregatorConfig{
		TopSources:    3,
		SourceWeight:  0.8,
		PatternWeight: 0.4,
	})
	sources := []models.MatchedSource{
		{Similarity: 100}, {Similarity: 100}, {Similarity: 100},
	}
	patterns := []models.SuspiciousPattern{{Confidence: 1.0}}

	if got := agg.Aggregate(sources, patterns); got != 100 {
		t.Errorf("Aggregate = %f, want clamped to 100", got)
	}
}

func TestAggregateDoesNotReorderInput(t *testing.T) {
	sources := []models.MatchedSource{
		{Similarity: 10},
		{Similarity: 90},
		{Similarity: 50},
	}

	newTestAggregator().Aggregate(sources, nil)

	if sources[0].Similarity != 10 || sources[1].Similarity != 90 || sources[2].Similarity != 50 {
		t.Errorf("input slice reordered: %+v", sources)
	}
}
