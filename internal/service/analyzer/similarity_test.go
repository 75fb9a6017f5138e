package analyzer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/coursebridge/originality-service/internal/models"
)

func newTestMatcher() SimilarityMatcher {
	return NewSimilarityMatcher(MatcherConfig{
		SimilarityThreshold: 0.15,
		MinMatchLength:      50,
		NgramSize:           3,
		WordJaccardWeight:   0.5,
	})
}

func TestSimilarityIdenticalText(t *testing.T) {
	m := newTestMatcher()

	texts := []string{
		"the quick brown fox jumps over the lazy dog",
		"hello",
		"two words",
	}
	for _, text := range texts {
		if got := m.Similarity(text, text); math.Abs(got-1.0) > 1e-12 {
			t.Errorf("Similarity(%q, %q) = %f, want 1.0", text, text, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	m := newTestMatcher()

	pairs := [][2]string{
		{"the quick brown fox", "a lazy dog sleeps here"},
		{"shared words appear in both texts", "both texts share some words"},
		{"", "nonempty text"},
		{"one two three four five", "three four five six seven"},
	}
	for _, p := range pairs {
		ab := m.Similarity(p[0], p[1])
		ba := m.Similarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("Similarity not symmetric for %q / %q: %f vs %f", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Similarity(%q, %q) = %f, out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestSimilarityEmptyInput(t *testing.T) {
	m := newTestMatcher()

	if got := m.Similarity("", ""); got != 0 {
		t.Errorf("Similarity of two empty texts = %f, want 0", got)
	}
	if got := m.Similarity("", "some actual words"); got != 0 {
		t.Errorf("Similarity of empty vs nonempty = %f, want 0", got)
	}
}

func TestSimilaritySharedWordsNoSharedTrigrams(t *testing.T) {
	m := newTestMatcher()

	// Same word set, fully reordered: word Jaccard 1, trigram Jaccard 0.
	got := m.Similarity("alpha beta gamma delta", "delta gamma beta alpha")
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Similarity = %f, want 0.5", got)
	}
}

func TestSimilarityDisjointTexts(t *testing.T) {
	m := newTestMatcher()

	if got := m.Similarity("one two three", "four five six"); got != 0 {
		t.Errorf("Similarity of disjoint texts = %f, want 0", got)
	}
}

func TestMatchBelowThresholdExcluded(t *testing.T) {
	m := NewSimilarityMatcher(MatcherConfig{
		SimilarityThreshold: 0.5,
		MinMatchLength:      50,
		NgramSize:           3,
		WordJaccardWeight:   0.5,
	})

	// Reordered word set scores exactly 0.5; the threshold is strict.
	entry := models.CorpusEntry{
		SubmissionID: "src-1",
		Text:         "delta gamma beta alpha",
	}
	if _, ok := m.Match("alpha beta gamma delta", "", entry); ok {
		t.Error("Match reported a source at exactly the threshold, want strictly above")
	}
}

func TestMatchFingerprintFastPath(t *testing.T) {
	m := newTestMatcher()

	text := "The Quick Brown Fox."
	entry := models.CorpusEntry{
		SubmissionID: "src-1",
		AuthorID:     "author-2",
		Text:         "",
		Fingerprint:  Fingerprint(text),
		SubmittedAt:  time.Now().UTC(),
	}

	source, ok := m.Match(text, Fingerprint(text), entry)
	if !ok {
		t.Fatal("Match did not report a fingerprint-identical source")
	}
	if source.Similarity != 100 {
		t.Errorf("fingerprint match similarity = %f, want 100", source.Similarity)
	}
	if source.SourceSubmissionID != "src-1" || source.AuthorID != "author-2" {
		t.Errorf("unexpected source identity: %+v", source)
	}
}

func TestMatchReportsLongestSharedRun(t *testing.T) {
	m := newTestMatcher()

	run := "The Quick Brown Fox Jumps Over The Lazy Dog Near The River Bank Every Morning"
	textA := "Opening remarks stand alone. " + run + ". Closing remarks differ."
	textB := "Unrelated preamble sits first. " + strings.ToLower(run) + ". Another unrelated ending."

	entry := models.CorpusEntry{SubmissionID: "src-1", Text: textB}
	source, ok := m.Match(textA, "", entry)
	if !ok {
		t.Fatal("Match did not report a heavily overlapping source")
	}
	if source.MatchedText != run {
		t.Errorf("MatchedText = %q, want %q", source.MatchedText, run)
	}
	if source.SourceText != strings.ToLower(run) {
		t.Errorf("SourceText = %q, want lowercased run", source.SourceText)
	}
}

func TestMatchEmptySubmissionsDoNotMatch(t *testing.T) {
	m := newTestMatcher()

	// Empty normalized text hashes to one fixed value, so two blank
	// submissions share a fingerprint. An empty word set still matches
	// nothing.
	entry := models.CorpusEntry{
		SubmissionID: "src-1",
		AuthorID:     "author-2",
		Text:         "",
		Fingerprint:  Fingerprint(""),
	}
	if _, ok := m.Match("", Fingerprint(""), entry); ok {
		t.Error("Match reported a source for two empty submissions")
	}

	blank := "   \t\n"
	entry.Text = blank
	entry.Fingerprint = Fingerprint(blank)
	if _, ok := m.Match(blank, Fingerprint(blank), entry); ok {
		t.Error("Match reported a source for two whitespace-only submissions")
	}
}

func TestMatchMinLengthCountsRunes(t *testing.T) {
	m := newTestMatcher()

	// 43 runes but 81 bytes: below the 50-character evidence bound, so the
	// run must be suppressed even though its byte length clears it.
	run := "первый второй третий четвертый пятый шестой"
	entry := models.CorpusEntry{SubmissionID: "src-1", Text: run}

	source, ok := m.Match(run, "", entry)
	if !ok {
		t.Fatal("Match did not report the identical source")
	}
	if source.MatchedText != "" || source.SourceText != "" {
		t.Errorf("sub-50-rune run not suppressed: matched=%q", source.MatchedText)
	}
}

func TestMatchShortRunSuppressed(t *testing.T) {
	m := newTestMatcher()

	// Similarity 0.5 clears the threshold, but the longest shared run is a
	// single word, far below the minimum evidence length.
	entry := models.CorpusEntry{SubmissionID: "src-1", Text: "delta gamma beta alpha"}
	source, ok := m.Match("alpha beta gamma delta", "", entry)
	if !ok {
		t.Fatal("Match did not report the source")
	}
	if source.MatchedText != "" || source.SourceText != "" {
		t.Errorf("short run not suppressed: matched=%q source=%q", source.MatchedText, source.SourceText)
	}
}
