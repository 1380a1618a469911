package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/admision-uni/preinscripcion-api/internal/models"
)

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditService records lifecycle events. It is strictly best-effort: a failed
// write is logged and swallowed so it can never roll back the submission's own
// transaction.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record persists the event, logging failures instead of returning them.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if s == nil || s.repo == nil || log == nil {
		return
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Sugar().Warnw("audit record failed",
			"action", log.Action,
			"resource", log.Resource,
			"error", err,
		)
	}
}
