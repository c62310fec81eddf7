package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/garage-sale-marketplace/internal/domain/event"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolProcessingService bounds event processing concurrency with an ants pool
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
	mu          sync.Mutex
	inFlight    map[string]int
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		inFlight:    make(map[string]int),
	}, nil
}

// ProcessEvent runs the event on a pool worker and waits for the result.
func (s *WorkerPoolProcessingService) ProcessEvent(ctx context.Context, evt *event.Event) error {
	log := logger.FromContext(ctx, s.logger)
	if evt.CorrelationID != "" {
		log = s.logger.With("correlation_id", evt.CorrelationID)
	}

	eventID := evt.ID.String()
	log.Debug("Submitting event to worker pool", "event_id", eventID, "event_type", string(evt.Type))

	resultChan := make(chan error, 1)
	s.track(eventID)

	// Workers get their own copy of the envelope
	evtCopy := *evt

	err := s.pool.Submit(func() {
		defer s.untrack(eventID)
		resultChan <- s.baseService.ProcessEvent(ctx, &evtCopy)
	})
	if err != nil {
		s.untrack(eventID)
		log.Error("Failed to submit event to worker pool", "event_id", eventID, "error", err)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *WorkerPoolProcessingService) track(eventID string) {
	s.mu.Lock()
	s.inFlight[eventID]++
	s.mu.Unlock()
}

func (s *WorkerPoolProcessingService) untrack(eventID string) {
	s.mu.Lock()
	if s.inFlight[eventID] <= 1 {
		delete(s.inFlight, eventID)
	} else {
		s.inFlight[eventID]--
	}
	s.mu.Unlock()
}

// InFlight returns the number of distinct events currently submitted
func (s *WorkerPoolProcessingService) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
