package analyzer

import (
	"strings"
	"testing"

	"github.com/coursebridge/originality-service/internal/models"
)

func newTestDetector() *patternDetector {
	return &patternDetector{config: PatternDetectorConfig{SuspiciousThreshold: 0.80}}
}

func findPattern(patterns []models.SuspiciousPattern, patternType string) (models.SuspiciousPattern, bool) {
	for _, p := range patterns {
		if p.Type == patternType {
			return p, true
		}
	}
	return models.SuspiciousPattern{}, false
}

func TestDetectEmptyText(t *testing.T) {
	if got := newTestDetector().Detect(""); len(got) != 0 {
		t.Errorf("Detect on empty text returned %d patterns, want 0", len(got))
	}
}

func TestDetectRepetitiveStructure(t *testing.T) {
	d := newTestDetector()

	text := strings.Repeat("One two three. ", 6)
	patterns := d.Detect(text)

	p, ok := findPattern(patterns, models.PatternRepetitiveStructure)
	if !ok {
		t.Fatal("repetitive_structure not reported for six identically shaped sentences")
	}
	if p.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0", p.Confidence)
	}
	if p.TextSegment != "One two three" {
		t.Errorf("TextSegment = %q, want first sentence of the dominant shape", p.TextSegment)
	}
}

func TestRepetitiveStructureRequiresMoreThanThreeRepeats(t *testing.T) {
	d := newTestDetector()

	text := "One two three. One two three. One two three. Completely different wording appears in this closing sentence."
	if _, ok := d.detectRepetitiveStructure(text); ok {
		t.Error("repetitive_structure fired with only three repeats of a shape")
	}
}

func TestDetectUnusualVocabulary(t *testing.T) {
	d := newTestDetector()

	p, ok := d.detectUnusualVocabulary("extraordinarily incomprehensible manifestations occur")
	if !ok {
		t.Fatal("unusual_vocabulary not reported for long-word heavy text")
	}
	if p.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0 (ratio 0.75 doubled and clamped)", p.Confidence)
	}
	if p.TextSegment != "extraordinarily" {
		t.Errorf("TextSegment = %q, want first long word", p.TextSegment)
	}
}

func TestUnusualVocabularyRatioBoundary(t *testing.T) {
	d := newTestDetector()

	// Exactly 10% long words does not fire: the ratio must exceed 0.10.
	text := "incomprehensible one two three four five six seven eight nine"
	if _, ok := d.detectUnusualVocabulary(text); ok {
		t.Error("unusual_vocabulary fired at exactly the 10% boundary")
	}
}

func TestDetectInconsistentStyle(t *testing.T) {
	d := newTestDetector()

	long := "This very long sentence keeps going with many more words than its tiny neighbor ever had."
	p, ok := d.detectInconsistentStyle("Hi. " + long)
	if !ok {
		t.Fatal("inconsistent_style not reported for wildly varying sentence lengths")
	}
	if p.Confidence <= 0 || p.Confidence > 1 {
		t.Errorf("confidence = %f, out of (0,1]", p.Confidence)
	}
	if p.TextSegment != strings.TrimSuffix(long, ".") {
		t.Errorf("TextSegment = %q, want the longest sentence", p.TextSegment)
	}
}

func TestInconsistentStyleUniformLengths(t *testing.T) {
	d := newTestDetector()

	if _, ok := d.detectInconsistentStyle(strings.Repeat("Same length here. ", 4)); ok {
		t.Error("inconsistent_style fired on uniform sentence lengths")
	}
}

func TestDetectCommonPhrases(t *testing.T) {
	d := newTestDetector()

	text := "According to research, studies have shown that it is important to note. " +
		"In conclusion, furthermore, moreover, therefore, as a result."
	p, ok := d.detectCommonPhrases(text)
	if !ok {
		t.Fatal("common_phrases not reported for eight stock phrases")
	}
	if p.Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8 for eight distinct phrases", p.Confidence)
	}
}

func TestCommonPhrasesRequireMoreThanFive(t *testing.T) {
	d := newTestDetector()

	text := "In conclusion, furthermore, moreover, therefore, as a result."
	if _, ok := d.detectCommonPhrases(text); ok {
		t.Error("common_phrases fired with only five distinct phrases")
	}
}

func TestDetectDropsLowConfidenceFindings(t *testing.T) {
	d := newTestDetector()

	// Six distinct stock phrases fire the heuristic at confidence 0.6,
	// below the suspicious threshold, so Detect must drop the finding.
	text := "In conclusion, furthermore, moreover, therefore, as a result, however."
	if got := d.Detect(text); len(got) != 0 {
		t.Errorf("Detect returned %d patterns, want 0 (all below threshold)", len(got))
	}
}

func TestDetectTemplateAssembledText(t *testing.T) {
	d := newTestDetector()

	text := strings.Repeat("However furthermore moreover therefore. ", 7) +
		"Studies have shown that according to research in conclusion as a result things follow."
	patterns := d.Detect(text)

	rep, ok := findPattern(patterns, models.PatternRepetitiveStructure)
	if !ok {
		t.Fatal("repetitive_structure not reported")
	}
	if rep.Confidence < 0.80 {
		t.Errorf("repetitive_structure confidence = %f, want >= 0.80", rep.Confidence)
	}

	phrases, ok := findPattern(patterns, models.PatternCommonPhrases)
	if !ok {
		t.Fatal("common_phrases not reported")
	}
	if phrases.Confidence < 0.80 {
		t.Errorf("common_phrases confidence = %f, want >= 0.80", phrases.Confidence)
	}
}
