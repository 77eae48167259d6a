package worker

import (
	"context"

	"go-cinema-booking/internal/queue"
	"go-cinema-booking/internal/repository"
	"go-cinema-booking/pkg/logger"

	"go.uber.org/zap"
)

type AuditWorker interface {
	// 訂閱稽核事件隊列
	Start(ctx context.Context) error
}

type AuditWorkerImpl struct {
	actionLogRepo repository.ActionLogRepository
	queue         queue.AuditQueue
}

func NewAuditWorker(actionLogRepo repository.ActionLogRepository, q queue.AuditQueue) AuditWorker {
	return &AuditWorkerImpl{
		actionLogRepo: actionLogRepo,
		queue:         q,
	}
}

func (w *AuditWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			// 把隊列裡的稽核事件落地到 action_logs
			err := w.actionLogRepo.Create(ctx, msg.Data)

			if err != nil {
				logger.WithComponent("audit-worker").Warn("persist audit event failed",
					zap.String("action", msg.Data.Action), zap.Error(err))
				// 資料庫暫時寫不進去就重回隊列
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}
