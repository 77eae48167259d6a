package worker

import (
	"context"
	"testing"
	"time"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockActionLogRepository struct {
	mock.Mock
}

func (m *mockActionLogRepository) Create(ctx context.Context, event *model.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockActionLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.ActionLog, error) {
	args := m.Called(ctx, limit)
	logs, _ := args.Get(0).([]*model.ActionLog)
	return logs, args.Error(1)
}

func TestAuditWorker(t *testing.T) {
	t.Run("persists consumed events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := new(mockActionLogRepository)
		q := queue.NewAuditQueue(8)
		auditWorker := NewAuditWorker(repo, q)

		done := make(chan struct{})
		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.AuditEvent) bool {
			return e.Action == "Create" && e.EntityType == "Hold"
		})).Run(func(args mock.Arguments) {
			close(done)
		}).Return(nil).Once()

		require.NoError(t, auditWorker.Start(ctx))

		event := &model.AuditEvent{
			UserID:     "session-1",
			Action:     "Create",
			EntityType: "Hold",
			OccurredAt: time.Now().UTC(),
		}
		require.NoError(t, q.PublishEvent(ctx, event))

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("expected the event to be persisted")
		}
		repo.AssertExpectations(t)
	})

	t.Run("failed persist is retried via nack", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		repo := new(mockActionLogRepository)
		q := queue.NewAuditQueue(8)
		auditWorker := NewAuditWorker(repo, q)

		done := make(chan struct{})
		repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError).Once()
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			close(done)
		}).Return(nil).Once()

		require.NoError(t, auditWorker.Start(ctx))

		require.NoError(t, q.PublishEvent(ctx, &model.AuditEvent{
			UserID:     "session-1",
			Action:     "Delete",
			EntityType: "Hold",
			OccurredAt: time.Now().UTC(),
		}))

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("expected the event to be redelivered and persisted")
		}
		repo.AssertExpectations(t)
	})
}
