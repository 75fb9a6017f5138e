package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
	"github.com/coursebridge/originality-service/internal/service"
	"github.com/coursebridge/originality-service/internal/worker/queue"
)

// AnalysisWorker consumes submission events from the platform exchange and
// runs the originality check for each, through the worker pool.
type AnalysisWorker interface {
	Start(ctx context.Context) error
	Stop() error
	GetStats() Stats
}

type Stats struct {
	ActiveWorkers  int `json:"active_workers"`
	TotalProcessed int `json:"total_processed"`
	FailedJobs     int `json:"failed_jobs"`
	QueueLength    int `json:"queue_length"`
}

type analysisWorker struct {
	workerPool      *WorkerPool
	queueConsumer   queue.Consumer
	analysisService service.AnalysisService
	logger          zerolog.Logger
	stats           Stats
	statsMutex      sync.RWMutex
	startTime       time.Time
}

func NewAnalysisWorker(
	workerPool *WorkerPool,
	queueConsumer queue.Consumer,
	analysisService service.AnalysisService,
	logger zerolog.Logger,
) AnalysisWorker {
	return &analysisWorker{
		workerPool:      workerPool,
		queueConsumer:   queueConsumer,
		analysisService: analysisService,
		logger:          logger,
		startTime:       time.Now(),
	}
}

func (w *analysisWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting analysis worker...")

	if err := w.workerPool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Analysis worker started successfully")
	return nil
}

func (w *analysisWorker) Stop() error {
	w.logger.Info().Msg("Stopping analysis worker...")

	if err := w.workerPool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()
	w.logger.Info().
		Int("total_processed", w.stats.TotalProcessed).
		Int("failed_jobs", w.stats.FailedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Analysis worker stopped")

	return nil
}

func (w *analysisWorker) processMessages(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			w.workerPool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Msg("Failed to process message")

					w.statsMutex.Lock()
					w.stats.FailedJobs++
					w.statsMutex.Unlock()

					// Malformed events are dropped; transient failures
					// (store outage) go back on the queue.
					if isPermanentError(err) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}

				w.statsMutex.Lock()
				w.stats.TotalProcessed++
				w.statsMutex.Unlock()
			})
		}
	}
}

func (w *analysisWorker) processMessage(ctx context.Context, msg queue.Message) error {
	var event models.SubmissionCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.SubmissionID) == "" {
		return permanent(errors.New("empty submission_id"))
	}

	w.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("course_id", event.CourseID).
		Str("assignment_id", event.AssignmentID).
		Msg("Processing submission analysis")

	_, err := w.analysisService.Analyze(ctx, models.AnalyzeRequest{
		SubmissionID: event.SubmissionID,
		CourseID:     event.CourseID,
		AssignmentID: event.AssignmentID,
		AuthorID:     event.AuthorID,
		Text:         event.Text,
		CheckedBy:    event.CheckedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingSubmissionID),
			errors.Is(err, service.ErrMissingScope):
			return permanent(err)
		case errors.Is(err, service.ErrAnalysisInProgress):
			// Another invocation already owns this submission; requeue.
			return err
		default:
			return err
		}
	}

	return nil
}

func (w *analysisWorker) GetStats() Stats {
	w.statsMutex.RLock()
	defer w.statsMutex.RUnlock()

	stats := w.stats
	stats.ActiveWorkers = w.workerPool.GetActiveWorkers()
	stats.QueueLength = w.workerPool.GetQueueLength()
	return stats
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func permanent(err error) error {
	return &permanentError{err: err}
}

func isPermanentError(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
