package analyzer

import (
	"sort"

	"github.com/coursebridge/originality-service/internal/models"
)

type ScoreAggregator interface {
	// Aggregate combines source similarities and pattern confidences into
	// one overall score in [0,100]. No matches and no patterns score 0.
	Aggregate(sources []models.MatchedSource, patterns []models.SuspiciousPattern) float64
}

type AggregatorConfig struct {
	TopSources    int
	SourceWeight  float64
	PatternWeight float64
}

type scoreAggregator struct {
	config AggregatorConfig
}

func NewScoreAggregator(config AggregatorConfig) ScoreAggregator {
	return &scoreAggregator{config: config}
}

func (a *scoreAggregator) Aggregate(sources []models.MatchedSource, patterns []models.SuspiciousPattern) float64 {
	score := 0.0

	if len(sources) > 0 {
		top := make([]models.MatchedSource, len(sources))
		copy(top, sources)
		sort.SliceStable(top, func(i, j int) bool {
			return top[i].Similarity > top[j].Similarity
		})
		if len(top) > a.config.TopSources {
			top = top[:a.config.TopSources]
		}

		sum := 0.0
		for _, s := range top {
			sum += s.Similarity
		}
		score += (sum / float64(len(top))) * a.config.SourceWeight
	}

	if len(patterns) > 0 {
		sum := 0.0
		for _, p := range patterns {
			sum += p.Confidence
		}
		score += (sum / float64(len(patterns))) * 100 * a.config.PatternWeight
	}

	if score > 100 {
		score = 100
	}
	return score
}
