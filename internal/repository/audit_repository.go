package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/admision-uni/preinscripcion-api/internal/models"
)

// AuditLogRepository is the insert-only sink for lifecycle events.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository constructs an AuditLogRepository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, actor, action, resource, resource_id, summary, old_values, new_values, ip_address, created_at)
		VALUES (:id, :actor, :action, :resource, :resource_id, :summary, :old_values, :new_values, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
