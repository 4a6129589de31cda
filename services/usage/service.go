package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/repositories"
	"github.com/upb/llm-datagen/services/providers"
)

// Record is emitted by the orchestrator for every successful generation
type Record struct {
	Principal string
	RequestID string
	Provider  string
	Model     string
	Usage     providers.Usage
	Latency   time.Duration
}

// Service persists usage records asynchronously
type Service struct {
	usageRepo   repositories.UsageRepository
	logger      *zap.Logger
	eventChan   chan Record
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	dropped     int64
	mu          sync.Mutex
}

// Config holds configuration for the usage Service
type Config struct {
	BufferSize  int // Size of the record buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000,
		WorkerCount: 5,
	}
}

// NewService creates a new usage Service instance
func NewService(usageRepo repositories.UsageRepository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Service{
		usageRepo:   usageRepo,
		logger:      logger,
		eventChan:   make(chan Record, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("usage service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started usage service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains pending records, waiting at most timeout
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("usage service not running")
	}
	s.stopped = true
	close(s.eventChan)
	s.mu.Unlock()

	s.logger.Info("stopping usage service", zap.Int("pending_records", len(s.eventChan)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("usage service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("usage service stop timeout after %v", timeout)
	}
}

// Record queues a record without blocking. When the buffer is full or the
// service is not running the record is dropped with a warning.
func (s *Service) Record(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		s.dropped++
		s.logger.Warn("usage service not running, dropping record", zap.String("provider", rec.Provider))
		return
	}

	select {
	case s.eventChan <- rec:
	default:
		s.dropped++
		s.logger.Warn("usage record channel full, dropping record",
			zap.String("provider", rec.Provider),
			zap.String("principal", rec.Principal))
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("usage worker started", zap.Int("worker_id", id))

	for rec := range s.eventChan {
		if err := s.processRecord(rec); err != nil {
			s.logger.Error("failed to persist usage record",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("provider", rec.Provider),
				zap.String("principal", rec.Principal))
		}
	}

	s.logger.Debug("usage worker stopped", zap.Int("worker_id", id))
}

func (s *Service) processRecord(rec Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := models.NewUsageLog(rec.Principal, models.UsageActionGenerateData, rec.Provider).
		WithTokens(rec.Usage.PromptTokens, rec.Usage.CompletionTokens, rec.Usage.TotalTokens).
		WithModel(rec.Model, rec.Latency).
		WithRequest(rec.RequestID)

	if err := s.usageRepo.Insert(ctx, log); err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}
	return nil
}

// GetStats returns statistics about the usage service
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingRecords: len(s.eventChan),
		WorkerCount:    s.workerCount,
		Dropped:        s.dropped,
		Started:        s.started && !s.stopped,
	}
}

// Stats represents usage service statistics
type Stats struct {
	BufferSize     int
	PendingRecords int
	WorkerCount    int
	Dropped        int64
	Started        bool
}
