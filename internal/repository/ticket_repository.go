package repository

import (
	"context"
	"time"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	ListByOwner(ctx context.Context, ownerToken string) ([]*model.Ticket, error)
	FindByNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error)
	NumberExists(ctx context.Context, ticketNumber string) (bool, error)

	// Transaction methods
	CreateTx(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, from, to model.TicketStatus) (*model.Ticket, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `
	id, ticket_id, ticket_number, owner_token, showtime_id, seat_id,
	price, status, barcode, issued_at, validated_at
`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID,
		&t.TicketID,
		&t.TicketNumber,
		&t.OwnerToken,
		&t.ShowtimeID,
		&t.SeatID,
		&t.Price,
		&t.Status,
		&t.Barcode,
		&t.IssuedAt,
		&t.ValidatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepositoryImpl) CreateTx(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			ticket_id, ticket_number, owner_token, showtime_id, seat_id, price, status, barcode
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + ticketColumns + `
	`

	created, err := scanTicket(tx.QueryRow(ctx, query,
		ticket.TicketID, ticket.TicketNumber, ticket.OwnerToken,
		ticket.ShowtimeID, ticket.SeatID, ticket.Price, ticket.Status, ticket.Barcode,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *TicketRepositoryImpl) ListByOwner(ctx context.Context, ownerToken string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE owner_token = $1
		ORDER BY issued_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) FindByNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_number = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) FindByTicketID(ctx context.Context, ticketID uuid.UUID) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_id = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) NumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tickets WHERE ticket_number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, ticketNumber).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// UpdateStatusTx 狀態轉換也是 compare-and-set：WHERE 帶上來源狀態，
// 改不到列就回 ErrInvalidTicketStatus。
func (r *TicketRepositoryImpl) UpdateStatusTx(ctx context.Context, tx pgx.Tx, ticketID uuid.UUID, from, to model.TicketStatus) (*model.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $1,
			validated_at = CASE WHEN $1 = 'used' THEN $2 ELSE validated_at END
		WHERE ticket_id = $3 AND status = $4
		RETURNING ` + ticketColumns + `
	`

	ticket, err := scanTicket(tx.QueryRow(ctx, query, to, time.Now().UTC(), ticketID, from))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrInvalidTicketStatus
		}
		return nil, err
	}

	return ticket, nil
}
