package queue

import (
	"context"
	"testing"
	"time"

	"go-cinema-booking/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(action string) *model.AuditEvent {
	return &model.AuditEvent{
		UserID:     "session-1",
		Action:     action,
		EntityType: "Hold",
		OccurredAt: time.Now().UTC(),
	}
}

func TestMemoryAuditQueue(t *testing.T) {
	t.Run("publish then subscribe", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := NewAuditQueue(8)
		require.NoError(t, q.PublishEvent(ctx, testEvent("Create")))

		msgs, err := q.SubscribeEvents(ctx)
		require.NoError(t, err)

		select {
		case msg := <-msgs:
			assert.Equal(t, "Create", msg.Data.Action)
			msg.Ack()
		case <-time.After(time.Second):
			t.Fatal("expected a delivery")
		}
	})

	t.Run("nack with requeue redelivers", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := NewAuditQueue(8)
		require.NoError(t, q.PublishEvent(ctx, testEvent("Update")))

		msgs, err := q.SubscribeEvents(ctx)
		require.NoError(t, err)

		first := <-msgs
		first.Nack(true)

		select {
		case second := <-msgs:
			assert.Equal(t, "Update", second.Data.Action)
			second.Ack()
		case <-time.After(time.Second):
			t.Fatal("expected redelivery after nack")
		}
	})

	t.Run("publish blocks until cancelled when full", func(t *testing.T) {
		ctx := context.Background()

		q := NewAuditQueue(1)
		require.NoError(t, q.PublishEvent(ctx, testEvent("A")))

		timed, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		err := q.PublishEvent(timed, testEvent("B"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("subscription closes on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		q := NewAuditQueue(8)
		msgs, err := q.SubscribeEvents(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, open := <-msgs:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("expected channel to close")
		}
	})
}
