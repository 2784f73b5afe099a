package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/timetable-ace/scheduler-api/internal/models"
	"github.com/timetable-ace/scheduler-api/pkg/jobs"
)

// AuditLogRepository persists audit records. Nil disables persistence and the
// in-memory trail stands alone.
type AuditLogRepository interface {
	Insert(ctx context.Context, log models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

// AuditService maintains the append-only audit trail. Records land in a
// bounded in-memory trail synchronously; database persistence happens off the
// request path through a worker queue so a slow sink never blocks a commit.
type AuditService struct {
	repo     AuditLogRepository
	queue    *jobs.Queue
	log      *zap.Logger
	capacity int

	mu      sync.RWMutex
	records []models.AuditLog
}

// NewAuditService constructs the audit trail. When repo is non-nil an
// internal queue is created; call Start before recording and Stop on
// shutdown.
func NewAuditService(repo AuditLogRepository, capacity, workers, retries int, log *zap.Logger) *AuditService {
	if capacity <= 0 {
		capacity = 500
	}
	s := &AuditService{
		repo:     repo,
		log:      log,
		capacity: capacity,
	}
	if repo != nil {
		s.queue = jobs.NewQueue("audit-persist", s.persistJob, jobs.QueueConfig{
			Workers:    workers,
			MaxRetries: retries,
			Logger:     log,
		})
	}
	return s
}

// Start launches the persistence workers. No-op without a repository.
func (s *AuditService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the persistence workers.
func (s *AuditService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Record appends one audit record and returns it. Records are immutable once
// created.
func (s *AuditService) Record(user, role, action, details string) models.AuditLog {
	record := models.AuditLog{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		User:      user,
		Role:      role,
		Action:    action,
		Details:   details,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	s.mu.Unlock()

	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: "audit-log", Payload: record}); err != nil && s.log != nil {
			s.log.Warn("audit record not queued for persistence",
				zap.String("id", record.ID), zap.Error(err))
		}
	}

	return record
}

// List returns audit records newest first. With a repository attached the
// database is authoritative; otherwise the in-memory trail answers.
func (s *AuditService) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if s.repo != nil {
		return s.repo.List(ctx, filter)
	}

	s.mu.RLock()
	matched := make([]models.AuditLog, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if filter.Action != "" && r.Action != filter.Action {
			continue
		}
		if filter.Role != "" && r.Role != filter.Role {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []models.AuditLog{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *AuditService) persistJob(ctx context.Context, job jobs.Job) error {
	record, ok := job.Payload.(models.AuditLog)
	if !ok {
		return nil
	}
	return s.repo.Insert(ctx, record)
}
