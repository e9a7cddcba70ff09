package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/campus-registration/internal/models"
)

// AuditLogs keeps audit rows in memory. Entries returns a copy for inspection.
type AuditLogs struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func NewAuditLogs() *AuditLogs { return &AuditLogs{} }

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.logs = append(r.logs, l)
	r.mu.Unlock()
	return nil
}

func (r *AuditLogs) Entries() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.logs))
	copy(out, r.logs)
	return out
}
