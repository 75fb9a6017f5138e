package models

import (
	"time"
)

type AnalysisCheck struct {
	ID                 string              `json:"id" db:"id"`
	SubmissionID       string              `json:"submission_id" db:"submission_id"`
	CourseID           string              `json:"course_id" db:"course_id"`
	AssignmentID       string              `json:"assignment_id" db:"assignment_id"`
	AuthorID           string              `json:"author_id" db:"author_id"`
	Status             string              `json:"status" db:"status"`
	SimilarityScore    float64             `json:"similarity_score" db:"similarity_score"`
	MatchedSources     []MatchedSource     `json:"matched_sources,omitempty" db:"matched_sources"`
	SuspiciousPatterns []SuspiciousPattern `json:"suspicious_patterns,omitempty" db:"suspicious_patterns"`
	Statistics         *TextStatistics     `json:"analysis_result,omitempty" db:"statistics"`
	ErrorMessage       *string             `json:"error_message,omitempty" db:"error_message"`
	CheckedBy          string              `json:"checked_by" db:"checked_by"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	StartedAt          *time.Time          `json:"started_at,omitempty" db:"started_at"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}

type CheckStatus string

const (
	CheckStatusPending    CheckStatus = "pending"
	CheckStatusProcessing CheckStatus = "processing"
	CheckStatusCompleted  CheckStatus = "completed"
	CheckStatusFailed     CheckStatus = "failed"
)

func (cs CheckStatus) String() string {
	return string(cs)
}

// MatchedSource is one corpus entry the submission was found similar to.
// Similarity is a 0-100 percentage; MatchedText/SourceText hold the longest
// common word run when it meets the minimum evidence length, otherwise both
// are empty and only the score is reported.
type MatchedSource struct {
	SourceSubmissionID string    `json:"source_submission_id"`
	AuthorID           string    `json:"author_id"`
	Similarity         float64   `json:"similarity"`
	MatchedText        string    `json:"matched_text"`
	SourceText         string    `json:"source_text"`
	SubmittedAt        time.Time `json:"submitted_at"`
}

type SuspiciousPattern struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	TextSegment string  `json:"text_segment"`
}

const (
	PatternRepetitiveStructure = "repetitive_structure"
	PatternUnusualVocabulary   = "unusual_vocabulary"
	PatternInconsistentStyle   = "inconsistent_style"
	PatternCommonPhrases       = "common_phrases"
)

// TextStatistics is the per-submission summary produced by the statistics
// extractor. All fields are zero for empty input.
type TextStatistics struct {
	TextLength            int       `json:"text_length"`
	WordCount             int       `json:"word_count"`
	UniqueWords           int       `json:"unique_words"`
	AverageWordLength     float64   `json:"average_word_length"`
	SentenceCount         int       `json:"sentence_count"`
	AverageSentenceLength float64   `json:"average_sentence_length"`
	ReadabilityScore      float64   `json:"readability_score"`
	LexicalDiversity      float64   `json:"lexical_diversity"`
	ProcessedAt           time.Time `json:"processed_at"`
}
