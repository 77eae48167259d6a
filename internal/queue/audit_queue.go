package queue

import (
	"context"

	"go-cinema-booking/internal/model"
)

type Delivery struct {
	Data *model.AuditEvent
	Ack  func()
	Nack func(requeue bool)
}

// AuditQueue 稽核事件隊列。發佈端 fire-and-forget；
// 消費端由 audit worker 落地到 action_logs。
type AuditQueue interface {
	// 發送稽核事件到隊列
	PublishEvent(ctx context.Context, event *model.AuditEvent) error
	// 訂閱稽核事件隊列
	SubscribeEvents(ctx context.Context) (<-chan Delivery, error)
}

type AuditQueueImpl struct {
	// 使用 Go channel 的記憶體版實作，開發與測試用
	ch chan *model.AuditEvent
}

func NewAuditQueue(bufferSize int) AuditQueue {
	return &AuditQueueImpl{
		ch: make(chan *model.AuditEvent, bufferSize),
	}
}

func (q *AuditQueueImpl) PublishEvent(ctx context.Context, event *model.AuditEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *AuditQueueImpl) SubscribeEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
