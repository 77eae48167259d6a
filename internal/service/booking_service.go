package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-cinema-booking/internal/cache"
	"go-cinema-booking/internal/issuer"
	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/payment"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BookingService interface {
	// GetSeatMap 場次座位圖（含 lazy 回收逾時 hold）
	GetSeatMap(ctx context.Context, showtimeID int) (*model.SeatMapResponse, error)
	// PlaceHold 為一組座位下保留，all-or-nothing
	PlaceHold(ctx context.Context, showtimeID int, seatIDs []int, ownerToken string) (*model.HoldResponse, error)
	// ReleaseHold 釋放保留，冪等
	ReleaseHold(ctx context.Context, holdID uuid.UUID, ownerToken string) error
	// Confirm 付款並把保留轉成票券：先授權、再原子換狀態、最後請款
	Confirm(ctx context.Context, holdID uuid.UUID, ownerToken string, card payment.Card) ([]*model.Ticket, error)
}

type BookingConfig struct {
	HoldDuration   time.Duration
	PaymentTimeout time.Duration
}

type BookingServiceImpl struct {
	pool         *pgxpool.Pool
	seatRepo     repository.SeatRepository
	showtimeRepo repository.ShowtimeRepository
	ticketRepo   repository.TicketRepository
	issuer       issuer.TicketIssuer
	gateway      payment.Gateway
	seatMapCache cache.SeatMapCache
	audit        *AuditRecorder
	cfg          BookingConfig
}

func NewBookingService(
	pool *pgxpool.Pool,
	seatRepo repository.SeatRepository,
	showtimeRepo repository.ShowtimeRepository,
	ticketRepo repository.TicketRepository,
	ticketIssuer issuer.TicketIssuer,
	gateway payment.Gateway,
	seatMapCache cache.SeatMapCache,
	audit *AuditRecorder,
	cfg BookingConfig,
) BookingService {
	return &BookingServiceImpl{
		pool:         pool,
		seatRepo:     seatRepo,
		showtimeRepo: showtimeRepo,
		ticketRepo:   ticketRepo,
		issuer:       ticketIssuer,
		gateway:      gateway,
		seatMapCache: seatMapCache,
		audit:        audit,
		cfg:          cfg,
	}
}

func (s *BookingServiceImpl) GetSeatMap(ctx context.Context, showtimeID int) (*model.SeatMapResponse, error) {
	// lazy sweep：逾時的 hold 不等 sweeper，讀的時候就回收
	s.sweepShowtime(ctx, showtimeID)

	if s.seatMapCache != nil {
		if cached, err := s.seatMapCache.Get(ctx, showtimeID); err == nil && cached != nil {
			return cached, nil
		}
	}

	showtime, err := s.showtimeRepo.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.seatRepo.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	views := make([]*model.SeatView, 0, len(seats))
	for _, seat := range seats {
		views = append(views, &model.SeatView{
			ID:                     seat.ID,
			Row:                    seat.Row,
			Number:                 seat.Number,
			Label:                  seat.Label(),
			Status:                 string(seat.Status),
			IsWheelchairAccessible: seat.IsWheelchairAccessible,
			IsVIP:                  seat.IsVIP,
		})
	}

	resp := &model.SeatMapResponse{
		ShowtimeID: showtimeID,
		Price:      showtime.Price,
		Seats:      views,
	}

	if s.seatMapCache != nil {
		// 讀取與寫回之間若有 Invalidate 插入，這份快照最多髒到 TTL；
		// 訂位一律走 DB 的 compare-and-set，不依賴快取
		if err := s.seatMapCache.Set(ctx, showtimeID, resp); err != nil {
			logger.WithComponent("booking").Warn("set seat map cache failed", zap.Int("showtime_id", showtimeID), zap.Error(err))
		}
	}

	return resp, nil
}

func (s *BookingServiceImpl) PlaceHold(ctx context.Context, showtimeID int, seatIDs []int, ownerToken string) (*model.HoldResponse, error) {
	seatIDs = dedupe(seatIDs)
	if len(seatIDs) == 0 || ownerToken == "" {
		return nil, apperrors.ErrInvalidInput
	}
	// 批次內固定以升冪順序鎖定座位，反向的重疊批次才不會互相等鎖
	sort.Ints(seatIDs)

	showtime, err := s.showtimeRepo.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if !showtime.IsActive {
		return nil, apperrors.ErrShowtimeNotFound
	}

	// 要求的座位必須屬於這個場次
	seats, err := s.seatRepo.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	known := make(map[int]bool, len(seats))
	for _, seat := range seats {
		known[seat.ID] = true
	}
	for _, id := range seatIDs {
		if !known[id] {
			return nil, &apperrors.SeatUnavailableError{SeatIDs: []int{id}}
		}
	}

	// 逾時的 hold 先回收，不讓殘留的過期保留擋住新客人
	s.sweepShowtime(ctx, showtimeID)

	holdID := uuid.New()
	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.HoldDuration)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 整批 compare-and-set：任何一個座位搶輸，整批回滾
	conflicts := []int{}
	for _, seatID := range seatIDs {
		err := s.seatRepo.CompareAndSetStatusTx(ctx, tx, seatID,
			model.AvailableState(),
			model.HoldUpdate(holdID, ownerToken, now, expiresAt),
		)
		if errors.Is(err, apperrors.ErrSeatConflict) {
			conflicts = append(conflicts, seatID)
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	if len(conflicts) > 0 {
		return nil, &apperrors.SeatUnavailableError{SeatIDs: conflicts}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateSeatMap(ctx, showtimeID)
	s.audit.Record(ownerToken, "Create", "Hold", nil,
		fmt.Sprintf("held %d seats for showtime %d", len(seatIDs), showtimeID))

	return &model.HoldResponse{
		HoldID:     holdID,
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		ExpiresAt:  expiresAt.Format(time.RFC3339),
		TotalPrice: showtime.Price * float64(len(seatIDs)),
	}, nil
}

func (s *BookingServiceImpl) ReleaseHold(ctx context.Context, holdID uuid.UUID, ownerToken string) error {
	seats, err := s.seatRepo.ListByHoldID(ctx, holdID)
	if err != nil {
		return err
	}

	// 已釋放或已逾時回收：冪等，視為成功
	if len(seats) == 0 {
		return nil
	}

	hold := model.HoldFromSeats(seats)
	if hold == nil || hold.OwnerToken != ownerToken {
		return apperrors.ErrNotOwner
	}

	s.releaseSeats(ctx, holdID, seats)
	s.invalidateSeatMap(ctx, hold.ShowtimeID)
	s.audit.Record(ownerToken, "Delete", "Hold", nil,
		fmt.Sprintf("released %d seats for showtime %d", len(seats), hold.ShowtimeID))

	return nil
}

func (s *BookingServiceImpl) Confirm(ctx context.Context, holdID uuid.UUID, ownerToken string, card payment.Card) ([]*model.Ticket, error) {
	seats, err := s.seatRepo.ListByHoldID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, apperrors.ErrHoldNotFound
	}

	hold := model.HoldFromSeats(seats)
	if hold == nil {
		return nil, apperrors.ErrHoldNotFound
	}
	if hold.OwnerToken != ownerToken {
		return nil, apperrors.ErrNotOwner
	}

	// 過期的 hold 不能確認，座位立刻放回可售，不等 sweeper
	if hold.Expired(time.Now().UTC()) {
		s.releaseSeats(ctx, holdID, seats)
		s.invalidateSeatMap(ctx, hold.ShowtimeID)
		return nil, apperrors.ErrHoldExpired
	}

	showtime, err := s.showtimeRepo.FindByID(ctx, hold.ShowtimeID)
	if err != nil {
		return nil, err
	}
	total := showtime.Price * float64(len(seats))

	// 第一階段：只圈存不請款。授權被拒時座位保持 Held 直到原本的
	// 到期時間，讓客人換卡重試。
	authCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	auth, err := s.gateway.Authorize(authCtx, total, card)
	if err != nil {
		var declined *payment.DeclinedError
		if errors.As(err, &declined) {
			logger.WithComponent("booking").Info("payment declined",
				zap.String("hold_id", holdID.String()), zap.String("reason", declined.Reason))
			return nil, apperrors.ErrPaymentDeclined
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logger.WithComponent("booking").Warn("payment authorization timed out", zap.String("hold_id", holdID.String()))
			return nil, apperrors.ErrPaymentDeclined
		}
		return nil, err
	}

	drafts, err := s.issuer.Issue(ctx, ownerToken, hold.ShowtimeID, hold.SeatIDs, showtime.Price)
	if err != nil {
		s.voidAuthorization(ctx, auth.TransactionID)
		return nil, err
	}

	// 第二階段：同一交易內逐座位 CAS Held→Booked 並寫入票券。
	// 任一座位在步驟之間被 sweeper 回收，整批回滾。
	tickets, err := s.claimSeats(ctx, holdID, seats, drafts)
	if err != nil {
		s.voidAuthorization(ctx, auth.TransactionID)
		if errors.Is(err, apperrors.ErrSeatConflict) {
			// 輸掉競爭：殘存的同 hold 座位直接放回可售
			s.releaseSeats(ctx, holdID, seats)
			s.invalidateSeatMap(ctx, hold.ShowtimeID)
			return nil, apperrors.ErrReservationRaceLost
		}
		return nil, err
	}

	// 座位全部到手才請款
	if err := s.gateway.Capture(ctx, auth.TransactionID); err != nil {
		// 票已發出，請款失敗交給金流側對帳，不回滾庫存
		logger.WithComponent("booking").Error("payment capture failed",
			zap.String("transaction_id", auth.TransactionID), zap.Error(err))
	}

	s.invalidateSeatMap(ctx, hold.ShowtimeID)
	s.audit.Record(ownerToken, "Create", "Ticket", nil,
		fmt.Sprintf("issued %d tickets for showtime %d", len(tickets), hold.ShowtimeID))

	return tickets, nil
}

// claimSeats 在單一交易內把整個 hold 的座位轉成已售並寫入票券
func (s *BookingServiceImpl) claimSeats(ctx context.Context, holdID uuid.UUID, seats []*model.Seat, drafts []*model.Ticket) ([]*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	draftsBySeat := make(map[int]*model.Ticket, len(drafts))
	for _, draft := range drafts {
		draftsBySeat[draft.SeatID] = draft
	}

	tickets := make([]*model.Ticket, 0, len(seats))
	for _, seat := range seats {
		draft, ok := draftsBySeat[seat.ID]
		if !ok {
			return nil, apperrors.ErrInternalServerError
		}

		err := s.seatRepo.CompareAndSetStatusTx(ctx, tx, seat.ID,
			model.HeldState(holdID),
			model.BookUpdate(draft.TicketID),
		)
		if err != nil {
			return nil, err
		}

		created, err := s.ticketRepo.CreateTx(ctx, tx, draft)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return tickets, nil
}

// releaseSeats 把仍屬於這個 hold 的座位放回可售。逐座位 pool 層 CAS，
// 搶輸（已被確認或重新保留）就跳過。
func (s *BookingServiceImpl) releaseSeats(ctx context.Context, holdID uuid.UUID, seats []*model.Seat) {
	for _, seat := range seats {
		err := s.seatRepo.CompareAndSetStatus(ctx, seat.ID, model.HeldState(holdID), model.ReleaseUpdate())
		if err != nil && !errors.Is(err, apperrors.ErrSeatConflict) {
			logger.WithComponent("booking").Warn("release seat failed",
				zap.Int("seat_id", seat.ID), zap.Error(err))
		}
	}
}

// sweepShowtime 回收單一場次的逾時 hold，best-effort
func (s *BookingServiceImpl) sweepShowtime(ctx context.Context, showtimeID int) {
	now := time.Now().UTC()
	expired, err := s.seatRepo.ListExpiredHeldByShowtime(ctx, showtimeID, now)
	if err != nil {
		logger.WithComponent("booking").Warn("list expired holds failed", zap.Int("showtime_id", showtimeID), zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, seat := range expired {
		if seat.HoldID == nil {
			continue
		}
		err := s.seatRepo.CompareAndSetStatus(ctx, seat.ID, model.HeldState(*seat.HoldID), model.ReleaseUpdate())
		if err != nil && !errors.Is(err, apperrors.ErrSeatConflict) {
			logger.WithComponent("booking").Warn("sweep seat failed", zap.Int("seat_id", seat.ID), zap.Error(err))
		}
	}

	s.invalidateSeatMap(ctx, showtimeID)
}

func (s *BookingServiceImpl) voidAuthorization(ctx context.Context, transactionID string) {
	if err := s.gateway.Void(ctx, transactionID); err != nil {
		logger.WithComponent("booking").Error("void authorization failed",
			zap.String("transaction_id", transactionID), zap.Error(err))
	}
}

func (s *BookingServiceImpl) invalidateSeatMap(ctx context.Context, showtimeID int) {
	if s.seatMapCache == nil {
		return
	}
	if err := s.seatMapCache.Invalidate(ctx, showtimeID); err != nil {
		logger.WithComponent("booking").Warn("invalidate seat map cache failed", zap.Int("showtime_id", showtimeID), zap.Error(err))
	}
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
