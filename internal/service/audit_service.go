package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/pkg/jobs"
)

const auditWriteTimeout = 5 * time.Second

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService persists audit entries off the request path.
type AuditService struct {
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	write := func(ctx context.Context, entry *models.AuditLog) error {
		ctx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
		defer cancel()
		return repo.CreateAuditLog(ctx, entry)
	}
	return &AuditService{
		queue:  jobs.NewQueue[*models.AuditLog]("audit", write, jobs.Config{Workers: 2, BufferSize: 256, MaxRetries: 2, Logger: logger}),
		logger: logger,
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered entries until ctx expires.
func (s *AuditService) Stop(ctx context.Context) {
	s.queue.Stop(ctx)
}

// CreateAuditLog enqueues entry. The request context is not retained.
func (s *AuditService) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.queue.Enqueue(entry)
}
