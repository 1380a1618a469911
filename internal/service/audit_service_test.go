package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/admision-uni/preinscripcion-api/internal/models"
)

type auditStoreStub struct {
	created []*models.AuditLog
	err     error
}

func (s *auditStoreStub) Create(ctx context.Context, log *models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, log)
	return nil
}

func TestAuditServiceRecord(t *testing.T) {
	store := &auditStoreStub{}
	svc := NewAuditService(store, nil)

	svc.Record(context.Background(), &models.AuditLog{Action: models.AuditActionCreate, Resource: "preinscripcion"})
	assert.Len(t, store.created, 1)
}

func TestAuditServiceSwallowsStoreErrors(t *testing.T) {
	svc := NewAuditService(&auditStoreStub{err: errors.New("db down")}, nil)

	// Must not panic or propagate.
	svc.Record(context.Background(), &models.AuditLog{Action: models.AuditActionAmend, Resource: "preinscripcion"})
}

func TestAuditServiceIgnoresNilLog(t *testing.T) {
	store := &auditStoreStub{}
	svc := NewAuditService(store, nil)

	svc.Record(context.Background(), nil)
	assert.Empty(t, store.created)
}
