package service

import (
	"context"

	"github.com/christinepetrosyan/Timebook/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Audit actions written on the master calendar.
const (
	AuditActionBook         = "BOOK"
	AuditActionBookOnBehalf = "BOOK_ON_BEHALF"
	AuditActionToggleBlock  = "TOGGLE_BLOCK"
	AuditActionTransition   = "TRANSITION"
	AuditActionCreateSlot   = "CREATE_SLOT"
	AuditActionUpdateSlot   = "UPDATE_SLOT"
	AuditActionDeleteSlot   = "DELETE_SLOT"
)

// AuditService writes one structured log record per calendar write.
type AuditService interface {
	LogCreate(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, newValue interface{})
	LogUpdate(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, oldValue, newValue interface{})
	LogDelete(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, oldValue interface{})
}

type auditService struct {
	log *logrus.Logger
}

func NewAuditService(log *logrus.Logger) AuditService {
	return &auditService{log: log}
}

func (s *auditService) LogCreate(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, newValue interface{}) {
	s.write(ctx, actor, action, entityName, entityID, nil, newValue)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) {
	s.write(ctx, actor, action, entityName, entityID, oldValue, newValue)
}

func (s *auditService) LogDelete(ctx context.Context, actor entity.Actor, action string, entityName string, entityID string, oldValue interface{}) {
	s.write(ctx, actor, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, actor entity.Actor, action, entityName, entityID string, oldValue, newValue interface{}) {
	s.log.WithContext(ctx).WithFields(logrus.Fields{
		"audit":      true,
		"action":     action,
		"actor_id":   actor.UserID.String(),
		"actor_role": string(actor.Role),
		"entity":     entityName,
		"entity_id":  entityID,
		"old_value":  oldValue,
		"new_value":  newValue,
	}).Info("audit")
}
