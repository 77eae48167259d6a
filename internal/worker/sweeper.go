package worker

import (
	"context"
	"errors"
	"time"

	"go-cinema-booking/internal/cache"
	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"go.uber.org/zap"
)

// sweepBatchSize 單輪掃描的座位上限，避免一次撈太多列
const sweepBatchSize = 500

type ExpirySweeper interface {
	// 啟動背景掃描，定期回收逾時的 hold
	Start(ctx context.Context) error
	// 立即掃一輪，回傳回收的座位數
	SweepOnce(ctx context.Context) int
}

type ExpirySweeperImpl struct {
	seatRepo     repository.SeatRepository
	seatMapCache cache.SeatMapCache
	interval     time.Duration
}

func NewExpirySweeper(seatRepo repository.SeatRepository, seatMapCache cache.SeatMapCache, interval time.Duration) ExpirySweeper {
	return &ExpirySweeperImpl{
		seatRepo:     seatRepo,
		seatMapCache: seatMapCache,
		interval:     interval,
	}
}

func (w *ExpirySweeperImpl) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.SweepOnce(ctx)
			}
		}
	}()
	return nil
}

// SweepOnce 掃一輪：撈出逾時的 held 座位，逐一 CAS 放回可售。
// 每個座位的回收都帶上當時的 hold_id 當條件，所以跟同時進行的
// confirm 只會有一方改到列；搶輸就跳過，不算錯誤。
func (w *ExpirySweeperImpl) SweepOnce(ctx context.Context) int {
	now := time.Now().UTC()

	expired, err := w.seatRepo.ListExpiredHeld(ctx, now, sweepBatchSize)
	if err != nil {
		logger.WithComponent("sweeper").Error("list expired holds failed", zap.Error(err))
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	swept := 0
	touched := map[int]bool{}
	for _, seat := range expired {
		if seat.HoldID == nil {
			continue
		}

		err := w.seatRepo.CompareAndSetStatus(ctx, seat.ID,
			model.HeldState(*seat.HoldID), model.ReleaseUpdate())
		if errors.Is(err, apperrors.ErrSeatConflict) {
			// 座位在撈出後已被確認或釋放，讓贏家保留結果
			continue
		}
		if err != nil {
			logger.WithComponent("sweeper").Warn("sweep seat failed",
				zap.Int("seat_id", seat.ID), zap.Error(err))
			continue
		}

		swept++
		touched[seat.ShowtimeID] = true
	}

	if swept > 0 {
		logger.WithComponent("sweeper").Info("released expired holds", zap.Int("seats", swept))
	}

	if w.seatMapCache != nil {
		for showtimeID := range touched {
			if err := w.seatMapCache.Invalidate(ctx, showtimeID); err != nil {
				logger.WithComponent("sweeper").Warn("invalidate seat map cache failed",
					zap.Int("showtime_id", showtimeID), zap.Error(err))
			}
		}
	}

	return swept
}
