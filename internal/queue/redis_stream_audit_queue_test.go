package queue

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-cinema-booking/config"
	"go-cinema-booking/internal/database"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testRdb, err = database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize test redis: %v", err)
	}

	code := m.Run()

	testRdb.Close()
	os.Exit(code)
}

func cleanupStream(ctx context.Context, t *testing.T) {
	t.Helper()
	_ = testRdb.Del(ctx, StreamKey).Err()
	_ = testRdb.XGroupDestroy(ctx, StreamKey, ConsumerGroupName).Err()
}

// --- 1. 建構 ---

func TestNewRedisStreamAuditQueue(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	t.Run("success", func(t *testing.T) {
		q, err := NewRedisStreamAuditQueue(testRdb, "test-consumer", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})

	t.Run("empty_consumer_id_generates_uuid", func(t *testing.T) {
		cleanupStream(ctx, t)
		q, err := NewRedisStreamAuditQueue(testRdb, "", nil)
		require.NoError(t, err)
		require.NotNil(t, q)
	})
}

// --- 2. 發送（基本成功即可；完整「有收到」由訂閱測試涵蓋）---

func TestRedisStreamAuditQueue_PublishEvent(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := NewRedisStreamAuditQueue(testRdb, "pub-test", nil)
	require.NoError(t, err)

	require.NoError(t, q.PublishEvent(ctx, testEvent("Create")))
}

// --- 3. 訂閱與投遞：驗證「發出去的內容」與「收進來的內容」一致 ---

func TestRedisStreamAuditQueue_Subscribe_deliversPublishedMessage(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := NewRedisStreamAuditQueue(testRdb, "deliver-test", nil)
	require.NoError(t, err)

	event := testEvent("Create")
	event.EntityType = "Hold"
	require.NoError(t, q.PublishEvent(ctx, event))

	subCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	delCh, err := q.SubscribeEvents(subCtx)
	require.NoError(t, err)

	select {
	case d, ok := <-delCh:
		require.True(t, ok, "應收到一筆")
		require.NotNil(t, d.Data)
		assert.Equal(t, event.UserID, d.Data.UserID)
		assert.Equal(t, event.Action, d.Data.Action)
		assert.Equal(t, event.EntityType, d.Data.EntityType)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到訊息")
	}
}

// --- 4. Ack 結果：Ack 後該訊息不應再被投遞 ---

func TestRedisStreamAuditQueue_Ack_preventsRedelivery(t *testing.T) {
	ctx := context.Background()
	cleanupStream(ctx, t)

	q, err := NewRedisStreamAuditQueue(testRdb, "ack-test", &RedisStreamAuditQueueConfig{
		ClaimMinIdleTime:   200 * time.Millisecond,
		ReadGroupBlockTime: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	require.NoError(t, q.PublishEvent(ctx, testEvent("Update")))

	subCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	delCh, err := q.SubscribeEvents(subCtx)
	require.NoError(t, err)

	var delivered int
	for {
		select {
		case d, ok := <-delCh:
			if !ok {
				assert.Equal(t, 1, delivered, "acked message must not come back")
				return
			}
			delivered++
			d.Ack()
		case <-subCtx.Done():
			assert.Equal(t, 1, delivered, "acked message must not come back")
			return
		}
	}
}
