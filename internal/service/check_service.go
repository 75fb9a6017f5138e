package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
	"github.com/coursebridge/originality-service/internal/repository"
)

type CheckService interface {
	SearchChecks(ctx context.Context, req models.SearchChecksRequest) (*models.SearchChecksResponse, error)
	GetAssignmentSummary(ctx context.Context, assignmentID string) (*models.AssignmentSummary, error)
	GetServiceStatus(ctx context.Context) (*models.ServiceStatusResponse, error)
}

// PoolStats exposes worker-pool gauges to the status endpoint.
type PoolStats interface {
	GetActiveWorkers() int
	GetQueueLength() int
}

type CheckConfig struct {
	// Completed checks scoring at or above FlagThreshold count as flagged
	// in the assignment summary.
	FlagThreshold float64
}

type checkService struct {
	checkRepo repository.CheckRepository
	poolStats PoolStats
	logger    zerolog.Logger
	config    CheckConfig
}

func NewCheckService(
	checkRepo repository.CheckRepository,
	poolStats PoolStats,
	logger zerolog.Logger,
	config CheckConfig,
) CheckService {
	return &checkService{
		checkRepo: checkRepo,
		poolStats: poolStats,
		logger:    logger,
		config:    config,
	}
}

func (s *checkService) SearchChecks(ctx context.Context, req models.SearchChecksRequest) (*models.SearchChecksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	checks, total, err := s.checkRepo.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search checks: %v", ErrStoreFailure, err)
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	return &models.SearchChecksResponse{
		Checks:     checks,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *checkService) GetAssignmentSummary(ctx context.Context, assignmentID string) (*models.AssignmentSummary, error) {
	if strings.TrimSpace(assignmentID) == "" {
		return nil, ErrMissingScope
	}

	summary, err := s.checkRepo.GetAssignmentSummary(ctx, assignmentID, s.config.FlagThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get assignment summary: %v", ErrStoreFailure, err)
	}

	return summary, nil
}

func (s *checkService) GetServiceStatus(ctx context.Context) (*models.ServiceStatusResponse, error) {
	dbOK := true
	if err := s.checkRepo.Ping(ctx); err != nil {
		dbOK = false
		s.logger.Error().Err(err).Msg("Database health check failed")
	}

	response := &models.ServiceStatusResponse{
		Status:    "healthy",
		Database:  dbOK,
		RabbitMQ:  true,
		Timestamp: time.Now().UTC(),
	}

	if s.poolStats != nil {
		response.ActiveWorkers = s.poolStats.GetActiveWorkers()
		response.QueueLength = s.poolStats.GetQueueLength()
	}

	if !dbOK {
		response.Status = "degraded"
	}

	return response, nil
}
