package analyzer

import (
	"strings"
	"time"
	"unicode"

	"github.com/coursebridge/originality-service/internal/models"
)

// ExtractStatistics computes the summary statistics for a submission text.
// Empty or word-less input yields zeroed fields rather than NaN: every ratio
// is guarded by its denominator so a blank submission still completes.
func ExtractStatistics(text string) models.TextStatistics {
	stats := models.TextStatistics{
		TextLength:  len(text),
		ProcessedAt: time.Now().UTC(),
	}

	words := Words(text)
	stats.WordCount = len(words)
	if stats.WordCount == 0 {
		return stats
	}

	unique := make(map[string]struct{}, len(words))
	totalWordLen := 0
	totalSyllables := 0
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		totalWordLen += len(w)
		totalSyllables += countSyllables(w)
	}
	stats.UniqueWords = len(unique)
	stats.AverageWordLength = float64(totalWordLen) / float64(stats.WordCount)
	stats.LexicalDiversity = float64(stats.UniqueWords) / float64(stats.WordCount)

	sentences := Sentences(text)
	stats.SentenceCount = len(sentences)
	if stats.SentenceCount > 0 {
		totalSentenceWords := 0
		for _, s := range sentences {
			totalSentenceWords += len(Words(s))
		}
		avgWordsPerSentence := float64(totalSentenceWords) / float64(stats.SentenceCount)
		avgSyllablesPerWord := float64(totalSyllables) / float64(stats.WordCount)

		stats.AverageSentenceLength = avgWordsPerSentence
		// Simplified Flesch reading-ease estimate.
		stats.ReadabilityScore = 206.835 - 1.015*avgWordsPerSentence - 84.6*avgSyllablesPerWord
	}

	return stats
}

// Words splits text into maximal alphanumeric runs.
func Words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Sentences splits text on '.', '!' and '?', discarding empty and
// whitespace-only fragments.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// countSyllables approximates the syllable count of a word as the number of
// vowel runs, with a minimum of one.
func countSyllables(word string) int {
	count := 0
	inRun := false
	for _, r := range strings.ToLower(word) {
		if isVowel(r) {
			if !inRun {
				count++
			}
			inRun = true
		} else {
			inRun = false
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
