package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/coursebridge/originality-service/internal/models"
)

type SimilarityMatcher interface {
	// Similarity returns a symmetric score in [0,1] combining word-set
	// Jaccard overlap and n-gram Jaccard overlap.
	Similarity(textA, textB string) float64
	// Match compares the submission text against one corpus entry and
	// reports it as a source when the similarity exceeds the threshold.
	Match(text, fingerprint string, entry models.CorpusEntry) (models.MatchedSource, bool)
}

type MatcherConfig struct {
	SimilarityThreshold float64
	MinMatchLength      int
	NgramSize           int
	WordJaccardWeight   float64
}

type similarityMatcher struct {
	config MatcherConfig
}

func NewSimilarityMatcher(config MatcherConfig) SimilarityMatcher {
	return &similarityMatcher{config: config}
}

func (m *similarityMatcher) Similarity(textA, textB string) float64 {
	wordJaccard := jaccard(wordSet(textA), wordSet(textB))

	gramsA := ngramSet(textA, m.config.NgramSize)
	gramsB := ngramSet(textB, m.config.NgramSize)

	// Texts shorter than the n-gram size have no n-grams at all; fall back
	// to word overlap there so identical short texts still score 1.
	ngramJaccard := wordJaccard
	if len(gramsA) > 0 || len(gramsB) > 0 {
		ngramJaccard = jaccard(gramsA, gramsB)
	}

	w := m.config.WordJaccardWeight
	return w*wordJaccard + (1-w)*ngramJaccard
}

func (m *similarityMatcher) Match(text, fingerprint string, entry models.CorpusEntry) (models.MatchedSource, bool) {
	var similarity float64
	if fingerprint != "" && fingerprint == entry.Fingerprint && len(Words(text)) > 0 {
		// Exact-duplicate fast path: identical normalized content. Word-less
		// texts are excluded; an empty word set matches nothing, even
		// another empty submission with the same (fixed) hash.
		similarity = 1.0
	} else {
		similarity = m.Similarity(text, entry.Text)
	}

	if similarity <= m.config.SimilarityThreshold {
		return models.MatchedSource{}, false
	}

	matched, source := m.longestCommonRun(text, entry.Text)

	return models.MatchedSource{
		SourceSubmissionID: entry.SubmissionID,
		AuthorID:           entry.AuthorID,
		Similarity:         similarity * 100,
		MatchedText:        matched,
		SourceText:         source,
		SubmittedAt:        entry.SubmittedAt,
	}, true
}

// longestCommonRun finds the longest contiguous run of words shared between
// the two texts, compared case-insensitively but rendered case-preserving
// from each side. The pairwise scan keeps the first-found longest run when
// several runs tie, which pins down which evidence segment gets reported.
// Runs shorter than MinMatchLength characters are suppressed.
func (m *similarityMatcher) longestCommonRun(textA, textB string) (string, string) {
	wordsA := Words(textA)
	wordsB := Words(textB)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return "", ""
	}

	best, bestA, bestB := 0, 0, 0
	for i := range wordsA {
		for j := range wordsB {
			k := 0
			for i+k < len(wordsA) && j+k < len(wordsB) &&
				strings.EqualFold(wordsA[i+k], wordsB[j+k]) {
				k++
			}
			if k > best {
				best, bestA, bestB = k, i, j
			}
		}
	}

	matched := strings.Join(wordsA[bestA:bestA+best], " ")
	if utf8.RuneCountInString(matched) < m.config.MinMatchLength {
		return "", ""
	}
	return matched, strings.Join(wordsB[bestB:bestB+best], " ")
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(text) {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func ngramSet(text string, n int) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{})
	if n <= 0 || len(words) < n {
		return set
	}
	for i := 0; i <= len(words)-n; i++ {
		gram := strings.ToLower(strings.Join(words[i:i+n], " "))
		set[gram] = struct{}{}
	}
	return set
}

// jaccard computes |intersection| / |union|. Empty sets yield 0, not NaN.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
