package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/campus-registration/internal/logger"
	"github.com/baharkarakas/campus-registration/internal/metrics"
	"github.com/baharkarakas/campus-registration/internal/models"
	repo "github.com/baharkarakas/campus-registration/internal/repository"
	"github.com/baharkarakas/campus-registration/internal/worker"
)

const auditWriteTimeout = 5 * time.Second

// AuditService writes authentication events off the request path.
// Failures are logged and never reach the caller.
type AuditService struct {
	r    repo.AuditLogs
	pool *worker.Pool
	log  *slog.Logger
}

func NewAuditService(r repo.AuditLogs, pool *worker.Pool, log *slog.Logger) *AuditService {
	return &AuditService{r: r, pool: pool, log: log}
}

// Record queues one event. entityID may be empty when no record was resolved.
func (s *AuditService) Record(role models.Role, entityID string, action models.AuditAction, details map[string]any) {
	l := models.AuditLog{
		EntityType: role,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if entityID != "" {
		l.EntityID = &entityID
	}

	ok := s.pool.TrySubmit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := s.r.Create(ctx, l); err != nil {
			s.log.Error("audit write", "action", string(action), logger.Err(err))
		}
		metrics.AuditQueueDepth.Set(float64(s.pool.Len()))
	})
	if !ok {
		metrics.AuditDropped.Inc()
		s.log.Warn("audit queue full, event dropped", "action", string(action))
		return
	}
	metrics.AuditQueueDepth.Set(float64(s.pool.Len()))
}
