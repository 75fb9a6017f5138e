package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/coursebridge/originality-service/internal/models"
)

type PatternDetector interface {
	// Detect runs every heuristic and returns the findings whose confidence
	// reaches the suspicious threshold. Heuristics that fire below the
	// threshold are dropped, not reported.
	Detect(text string) []models.SuspiciousPattern
}

type PatternDetectorConfig struct {
	SuspiciousThreshold float64
}

type patternDetector struct {
	config PatternDetectorConfig
}

func NewPatternDetector(config PatternDetectorConfig) PatternDetector {
	return &patternDetector{config: config}
}

// stockPhrases are transition and attribution phrases that pile up in
// ghost-written or template-assembled academic text.
var stockPhrases = []string{
	"according to research",
	"studies have shown",
	"it is important to note",
	"in conclusion",
	"in summary",
	"furthermore",
	"moreover",
	"on the other hand",
	"as previously mentioned",
	"in other words",
	"it can be argued",
	"research suggests",
	"experts agree",
	"it is widely known",
	"as a result",
	"needless to say",
	"however",
	"therefore",
}

func (d *patternDetector) Detect(text string) []models.SuspiciousPattern {
	var patterns []models.SuspiciousPattern

	candidates := []models.SuspiciousPattern{}
	if p, ok := d.detectRepetitiveStructure(text); ok {
		candidates = append(candidates, p)
	}
	if p, ok := d.detectUnusualVocabulary(text); ok {
		candidates = append(candidates, p)
	}
	if p, ok := d.detectInconsistentStyle(text); ok {
		candidates = append(candidates, p)
	}
	if p, ok := d.detectCommonPhrases(text); ok {
		candidates = append(candidates, p)
	}

	for _, p := range candidates {
		if p.Confidence >= d.config.SuspiciousThreshold {
			patterns = append(patterns, p)
		}
	}

	return patterns
}

// detectRepetitiveStructure maps each sentence to a coarse shape string and
// flags any shape occurring more than 3 times.
func (d *patternDetector) detectRepetitiveStructure(text string) (models.SuspiciousPattern, bool) {
	sentences := Sentences(text)
	if len(sentences) == 0 {
		return models.SuspiciousPattern{}, false
	}

	shapes := make(map[string]int)
	firstBy := make(map[string]string)
	for _, s := range sentences {
		shape := sentenceShape(s)
		shapes[shape]++
		if _, ok := firstBy[shape]; !ok {
			firstBy[shape] = s
		}
	}

	bestShape := ""
	bestCount := 0
	for shape, count := range shapes {
		if count > bestCount {
			bestShape, bestCount = shape, count
		}
	}

	if bestCount <= 3 {
		return models.SuspiciousPattern{}, false
	}

	return models.SuspiciousPattern{
		Type:        models.PatternRepetitiveStructure,
		Confidence:  clamp01(float64(bestCount) / float64(len(sentences))),
		Description: fmt.Sprintf("%d of %d sentences share the same structural shape", bestCount, len(sentences)),
		TextSegment: firstBy[bestShape],
	}, true
}

// detectUnusualVocabulary flags texts where words longer than 12 characters
// make up more than 10% of all words.
func (d *patternDetector) detectUnusualVocabulary(text string) (models.SuspiciousPattern, bool) {
	words := Words(text)
	if len(words) == 0 {
		return models.SuspiciousPattern{}, false
	}

	long := 0
	sample := ""
	for _, w := range words {
		if len(w) > 12 {
			long++
			if sample == "" {
				sample = w
			}
		}
	}

	ratio := float64(long) / float64(len(words))
	if ratio <= 0.10 {
		return models.SuspiciousPattern{}, false
	}

	return models.SuspiciousPattern{
		Type:        models.PatternUnusualVocabulary,
		Confidence:  clamp01(ratio * 2),
		Description: fmt.Sprintf("unusually dense vocabulary: %.0f%% of words exceed 12 characters", ratio*100),
		TextSegment: sample,
	}, true
}

// detectInconsistentStyle flags texts whose sentence lengths swing widely:
// population standard deviation above half the mean.
func (d *patternDetector) detectInconsistentStyle(text string) (models.SuspiciousPattern, bool) {
	sentences := Sentences(text)
	if len(sentences) < 2 {
		return models.SuspiciousPattern{}, false
	}

	mean := 0.0
	for _, s := range sentences {
		mean += float64(len(s))
	}
	mean /= float64(len(sentences))
	if mean == 0 {
		return models.SuspiciousPattern{}, false
	}

	variance := 0.0
	for _, s := range sentences {
		diff := float64(len(s)) - mean
		variance += diff * diff
	}
	variance /= float64(len(sentences))
	stdDev := math.Sqrt(variance)

	if stdDev <= 0.5*mean {
		return models.SuspiciousPattern{}, false
	}

	// The longest sentence is the most visible outlier.
	longest := sentences[0]
	for _, s := range sentences[1:] {
		if len(s) > len(longest) {
			longest = s
		}
	}

	return models.SuspiciousPattern{
		Type:        models.PatternInconsistentStyle,
		Confidence:  clamp01(stdDev / mean),
		Description: fmt.Sprintf("sentence length varies inconsistently (stddev %.1f vs mean %.1f)", stdDev, mean),
		TextSegment: longest,
	}, true
}

// detectCommonPhrases flags texts leaning on more than 5 distinct stock
// academic phrases.
func (d *patternDetector) detectCommonPhrases(text string) (models.SuspiciousPattern, bool) {
	lower := strings.ToLower(text)

	count := 0
	found := []string{}
	for _, phrase := range stockPhrases {
		if strings.Contains(lower, phrase) {
			count++
			if len(found) < 3 {
				found = append(found, phrase)
			}
		}
	}

	if count <= 5 {
		return models.SuspiciousPattern{}, false
	}

	return models.SuspiciousPattern{
		Type:        models.PatternCommonPhrases,
		Confidence:  clamp01(float64(count) / 10),
		Description: fmt.Sprintf("%d stock academic phrases found", count),
		TextSegment: strings.Join(found, ", "),
	}, true
}

// sentenceShape renders a sentence as word-size buckets: LONG for words over
// 8 characters, MED over 5, SHORT otherwise, joined by '-'.
func sentenceShape(sentence string) string {
	words := Words(sentence)
	buckets := make([]string, len(words))
	for i, w := range words {
		switch {
		case len(w) > 8:
			buckets[i] = "LONG"
		case len(w) > 5:
			buckets[i] = "MED"
		default:
			buckets[i] = "SHORT"
		}
	}
	return strings.Join(buckets, "-")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
