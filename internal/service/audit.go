package service

import (
	"context"
	"time"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/queue"
	"go-cinema-booking/pkg/logger"

	"go.uber.org/zap"
)

// AuditRecorder 包一層稽核事件發佈。fire-and-forget：
// 發佈失敗只記 log，永遠不影響呼叫端的交易結果。
type AuditRecorder struct {
	queue queue.AuditQueue
}

func NewAuditRecorder(q queue.AuditQueue) *AuditRecorder {
	return &AuditRecorder{queue: q}
}

func (a *AuditRecorder) Record(userID, action, entityType string, entityID *int, details string) {
	if a == nil || a.queue == nil {
		return
	}

	event := &model.AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if details != "" {
		event.Details = &details
	}

	// 用獨立的 context：請求結束不該讓稽核事件丟失
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := a.queue.PublishEvent(ctx, event); err != nil {
		logger.WithComponent("audit").Warn("publish audit event failed",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err))
	}
}
