package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
	"github.com/coursebridge/originality-service/internal/repository"
	"github.com/coursebridge/originality-service/internal/service/analyzer"
	"github.com/coursebridge/originality-service/internal/worker/queue"
	"github.com/coursebridge/originality-service/pkg/utils"
)

type AnalysisService interface {
	// Analyze runs the full originality check synchronously: statistics,
	// corpus matching, pattern detection, aggregation, then the terminal
	// check write and the corpus upsert.
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisEnvelope, error)
	// AnalyzeAsync records a pending check and hands the submission to the
	// queue; a worker picks it up and runs Analyze.
	AnalyzeAsync(ctx context.Context, req models.AnalyzeRequest) error
	GetResult(ctx context.Context, submissionID string) (*models.AnalysisEnvelope, error)
	DeactivateCorpusEntry(ctx context.Context, submissionID string) error
}

type AnalysisConfig struct {
	Exchange           string
	SubmissionRouteKey string
	CompletedRouteKey  string
	FailedRouteKey     string
}

type analysisService struct {
	checkRepo  repository.CheckRepository
	corpusRepo repository.CorpusRepository
	matcher    analyzer.SimilarityMatcher
	detector   analyzer.PatternDetector
	aggregator analyzer.ScoreAggregator
	publisher  queue.Publisher
	logger     zerolog.Logger
	config     AnalysisConfig

	// At-most-one-in-flight guard per submission. Concurrent analyses of
	// different submissions are free to race on corpus visibility (the
	// corpus is eventually, not linearizably, visible across submissions);
	// only same-submission interleaving is rejected.
	inflight sync.Map
}

func NewAnalysisService(
	checkRepo repository.CheckRepository,
	corpusRepo repository.CorpusRepository,
	matcher analyzer.SimilarityMatcher,
	detector analyzer.PatternDetector,
	aggregator analyzer.ScoreAggregator,
	publisher queue.Publisher,
	logger zerolog.Logger,
	config AnalysisConfig,
) AnalysisService {
	return &analysisService{
		checkRepo:  checkRepo,
		corpusRepo: corpusRepo,
		matcher:    matcher,
		detector:   detector,
		aggregator: aggregator,
		publisher:  publisher,
		logger:     logger,
		config:     config,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisEnvelope, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if _, loaded := s.inflight.LoadOrStore(req.SubmissionID, struct{}{}); loaded {
		return nil, ErrAnalysisInProgress
	}
	defer s.inflight.Delete(req.SubmissionID)

	startTime := time.Now()

	check := &models.AnalysisCheck{
		ID:           utils.GenerateUUID(),
		SubmissionID: req.SubmissionID,
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		AuthorID:     req.AuthorID,
		Status:       models.CheckStatusProcessing.String(),
		CheckedBy:    req.CheckedBy,
		CreatedAt:    startTime,
		StartedAt:    &startTime,
	}

	// Re-analysis of the same submission resets the prior terminal record
	// rather than appending a second one.
	if err := s.checkRepo.StartProcessing(ctx, check); err != nil {
		return nil, fmt.Errorf("%w: failed to start check: %v", ErrStoreFailure, err)
	}

	stats := analyzer.ExtractStatistics(req.Text)
	fingerprint := analyzer.Fingerprint(req.Text)

	// Corpus read happens before the corpus write below, so a submission
	// never matches against its own not-yet-written entry.
	candidates, err := s.corpusRepo.FindCandidates(ctx, req.CourseID, req.AssignmentID, req.AuthorID)
	if err != nil {
		return nil, s.failCheck(ctx, req.SubmissionID,
			fmt.Errorf("%w: failed to read candidates: %v", ErrStoreFailure, err))
	}

	sources := s.matchCandidates(req.Text, fingerprint, candidates)
	patterns := s.detector.Detect(req.Text)
	score := s.aggregator.Aggregate(sources, patterns)

	completedAt := time.Now()
	check.Status = models.CheckStatusCompleted.String()
	check.SimilarityScore = score
	check.MatchedSources = sources
	check.SuspiciousPatterns = patterns
	check.Statistics = &stats
	check.CompletedAt = &completedAt

	if err := s.checkRepo.Complete(ctx, check); err != nil {
		return nil, s.failCheck(ctx, req.SubmissionID,
			fmt.Errorf("%w: failed to complete check: %v", ErrStoreFailure, err))
	}

	entry := &models.CorpusEntry{
		SubmissionID: req.SubmissionID,
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		AuthorID:     req.AuthorID,
		Text:         req.Text,
		Fingerprint:  fingerprint,
		WordCount:    stats.WordCount,
		SubmittedAt:  completedAt,
		IsActive:     true,
	}
	if err := s.corpusRepo.Upsert(ctx, entry); err != nil {
		return nil, s.failCheck(ctx, req.SubmissionID,
			fmt.Errorf("%w: failed to upsert corpus entry: %v", ErrStoreFailure, err))
	}

	s.publishCompleted(ctx, check, int(completedAt.Sub(startTime).Milliseconds()))

	s.logger.Info().
		Str("submission_id", req.SubmissionID).
		Float64("similarity_score", score).
		Int("matched_sources", len(sources)).
		Int("suspicious_patterns", len(patterns)).
		Dur("processing_time", completedAt.Sub(startTime)).
		Msg("Analysis completed")

	return checkToEnvelope(check), nil
}

func (s *analysisService) AnalyzeAsync(ctx context.Context, req models.AnalyzeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	now := time.Now()
	check := &models.AnalysisCheck{
		ID:           utils.GenerateUUID(),
		SubmissionID: req.SubmissionID,
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		AuthorID:     req.AuthorID,
		Status:       models.CheckStatusPending.String(),
		CheckedBy:    req.CheckedBy,
		CreatedAt:    now,
	}

	if err := s.checkRepo.StartProcessing(ctx, check); err != nil {
		return fmt.Errorf("%w: failed to create pending check: %v", ErrStoreFailure, err)
	}

	event := models.SubmissionCreatedEvent{
		SubmissionID: req.SubmissionID,
		CourseID:     req.CourseID,
		AssignmentID: req.AssignmentID,
		AuthorID:     req.AuthorID,
		Text:         req.Text,
		CheckedBy:    req.CheckedBy,
		Timestamp:    now.Unix(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal submission event: %w", err)
	}

	if err := s.publisher.Publish(ctx, s.config.Exchange, s.config.SubmissionRouteKey, body); err != nil {
		return fmt.Errorf("failed to publish submission event: %w", err)
	}

	s.logger.Info().
		Str("submission_id", req.SubmissionID).
		Msg("Async analysis requested")

	return nil
}

func (s *analysisService) GetResult(ctx context.Context, submissionID string) (*models.AnalysisEnvelope, error) {
	if strings.TrimSpace(submissionID) == "" {
		return nil, ErrMissingSubmissionID
	}

	check, err := s.checkRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get check: %v", ErrStoreFailure, err)
	}
	if check == nil {
		return nil, ErrCheckNotFound
	}

	return checkToEnvelope(check), nil
}

func (s *analysisService) DeactivateCorpusEntry(ctx context.Context, submissionID string) error {
	if strings.TrimSpace(submissionID) == "" {
		return ErrMissingSubmissionID
	}

	if err := s.corpusRepo.Deactivate(ctx, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCorpusEntryNotFound
		}
		return fmt.Errorf("%w: failed to deactivate corpus entry: %v", ErrStoreFailure, err)
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Msg("Corpus entry deactivated")

	return nil
}

// matchCandidates scores every candidate and returns the sources above
// threshold, sorted descending by similarity.
func (s *analysisService) matchCandidates(text, fingerprint string, candidates []models.CorpusEntry) []models.MatchedSource {
	var sources []models.MatchedSource
	for _, candidate := range candidates {
		if source, ok := s.matcher.Match(text, fingerprint, candidate); ok {
			sources = append(sources, source)
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Similarity > sources[j].Similarity
	})

	return sources
}

// failCheck persists the terminal failed state, publishes the failure event
// and returns the original error for the caller. The corpus upsert is never
// attempted for a failed analysis.
func (s *analysisService) failCheck(ctx context.Context, submissionID string, cause error) error {
	if err := s.checkRepo.Fail(ctx, submissionID, cause.Error()); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", submissionID).
			Msg("Failed to persist failed check")
	}

	event := models.AnalysisFailedEvent{
		SubmissionID: submissionID,
		Error:        cause.Error(),
		FailedAt:     time.Now(),
	}
	if body, err := json.Marshal(event); err == nil {
		if err := s.publisher.Publish(ctx, s.config.Exchange, s.config.FailedRouteKey, body); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish analysis failed event")
		}
	}

	s.logger.Error().Err(cause).
		Str("submission_id", submissionID).
		Msg("Analysis failed")

	return cause
}

func (s *analysisService) publishCompleted(ctx context.Context, check *models.AnalysisCheck, processingTimeMs int) {
	event := models.AnalysisCompletedEvent{
		SubmissionID:    check.SubmissionID,
		CheckID:         check.ID,
		Status:          check.Status,
		SimilarityScore: check.SimilarityScore,
		MatchedCount:    len(check.MatchedSources),
		PatternCount:    len(check.SuspiciousPatterns),
		ProcessingTime:  processingTimeMs,
		CompletedAt:     *check.CompletedAt,
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal analysis completed event")
		return
	}

	if err := s.publisher.Publish(ctx, s.config.Exchange, s.config.CompletedRouteKey, body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish analysis completed event")
	}
}

func validateRequest(req models.AnalyzeRequest) error {
	if strings.TrimSpace(req.SubmissionID) == "" {
		return ErrMissingSubmissionID
	}
	if strings.TrimSpace(req.CourseID) == "" ||
		strings.TrimSpace(req.AssignmentID) == "" ||
		strings.TrimSpace(req.AuthorID) == "" {
		return ErrMissingScope
	}
	// Empty text is not an error: analysis proceeds with zeroed statistics
	// and no candidate can match an empty word set.
	return nil
}

func checkToEnvelope(check *models.AnalysisCheck) *models.AnalysisEnvelope {
	return &models.AnalysisEnvelope{
		SubmissionID:       check.SubmissionID,
		SimilarityScore:    check.SimilarityScore,
		MatchedSources:     check.MatchedSources,
		SuspiciousPatterns: check.SuspiciousPatterns,
		AnalysisResult:     check.Statistics,
		Status:             check.Status,
		ErrorMessage:       check.ErrorMessage,
		CheckedBy:          check.CheckedBy,
		CompletedAt:        check.CompletedAt,
	}
}
