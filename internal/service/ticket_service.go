package service

import (
	"context"
	"errors"
	"fmt"

	"go-cinema-booking/internal/cache"
	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TicketService interface {
	ListTickets(ctx context.Context, ownerToken string) ([]*model.Ticket, error)
	GetTicket(ctx context.Context, ticketID uuid.UUID, ownerToken string) (*model.Ticket, error)
	// CancelTicket 退票：票轉 cancelled，座位同一交易內放回可售
	CancelTicket(ctx context.Context, ticketID uuid.UUID, ownerToken string) (*model.Ticket, error)
	// ValidateTicket 入場驗票：confirmed → used，一張票只能驗一次
	ValidateTicket(ctx context.Context, ticketNumber string) (*model.Ticket, error)
}

type TicketServiceImpl struct {
	pool         *pgxpool.Pool
	ticketRepo   repository.TicketRepository
	seatRepo     repository.SeatRepository
	seatMapCache cache.SeatMapCache
	audit        *AuditRecorder
}

func NewTicketService(
	pool *pgxpool.Pool,
	ticketRepo repository.TicketRepository,
	seatRepo repository.SeatRepository,
	seatMapCache cache.SeatMapCache,
	audit *AuditRecorder,
) TicketService {
	return &TicketServiceImpl{
		pool:         pool,
		ticketRepo:   ticketRepo,
		seatRepo:     seatRepo,
		seatMapCache: seatMapCache,
		audit:        audit,
	}
}

func (s *TicketServiceImpl) ListTickets(ctx context.Context, ownerToken string) ([]*model.Ticket, error) {
	if ownerToken == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return s.ticketRepo.ListByOwner(ctx, ownerToken)
}

func (s *TicketServiceImpl) GetTicket(ctx context.Context, ticketID uuid.UUID, ownerToken string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerToken != ownerToken {
		return nil, apperrors.ErrNotOwner
	}
	return ticket, nil
}

func (s *TicketServiceImpl) CancelTicket(ctx context.Context, ticketID uuid.UUID, ownerToken string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerToken != ownerToken {
		return nil, apperrors.ErrNotOwner
	}

	seat, err := s.seatRepo.FindByID(ctx, ticket.SeatID)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 狀態轉換帶來源狀態當條件：已取消或已使用的票在這裡擋下
	cancelled, err := s.ticketRepo.UpdateStatusTx(ctx, tx, ticketID,
		model.TicketStatusConfirmed, model.TicketStatusCancelled)
	if err != nil {
		return nil, err
	}

	// 座位仍掛著這張票才放回可售
	if seat.TicketID != nil && *seat.TicketID == ticketID {
		err := s.seatRepo.CompareAndSetStatusTx(ctx, tx, seat.ID,
			model.BookedState(nil), model.ReleaseUpdate())
		if err != nil && !errors.Is(err, apperrors.ErrSeatConflict) {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.seatMapCache != nil {
		if err := s.seatMapCache.Invalidate(ctx, ticket.ShowtimeID); err != nil {
			logger.WithComponent("ticket").Warn("invalidate seat map cache failed",
				zap.Int("showtime_id", ticket.ShowtimeID), zap.Error(err))
		}
	}

	s.audit.Record(ownerToken, "Update", "Ticket", nil,
		fmt.Sprintf("cancelled ticket %s", ticket.TicketNumber))

	return cancelled, nil
}

func (s *TicketServiceImpl) ValidateTicket(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	ticket, err := s.ticketRepo.FindByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	used, err := s.ticketRepo.UpdateStatusTx(ctx, tx, ticket.TicketID,
		model.TicketStatusConfirmed, model.TicketStatusUsed)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Update", "Ticket", nil,
		fmt.Sprintf("validated ticket %s", ticket.TicketNumber))

	return used, nil
}
