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

// SeatRepository 是座位庫存的唯一存取層。所有變更都走 compare-and-set：
// UPDATE 帶上預期的 (status, hold_id) 當 WHERE 條件，RowsAffected 為 0 即
// ErrSeatConflict。呼叫端要嘛重試、要嘛放棄，絕不盲目覆寫。
type SeatRepository interface {
	ListByShowtime(ctx context.Context, showtimeID int) ([]*model.Seat, error)
	ListByHoldID(ctx context.Context, holdID uuid.UUID) ([]*model.Seat, error)
	FindByID(ctx context.Context, id int) (*model.Seat, error)
	ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]*model.Seat, error)
	ListExpiredHeldByShowtime(ctx context.Context, showtimeID int, now time.Time) ([]*model.Seat, error)

	// 單座位 CAS：一條 UPDATE 即是原子操作，不需要外部交易
	CompareAndSetStatus(ctx context.Context, seatID int, expected model.SeatState, next model.SeatUpdate) error

	// Transaction methods
	CreateBatchTx(ctx context.Context, tx pgx.Tx, seats []*model.Seat) error
	CompareAndSetStatusTx(ctx context.Context, tx pgx.Tx, seatID int, expected model.SeatState, next model.SeatUpdate) error
}

type SeatRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) SeatRepository {
	return &SeatRepositoryImpl{
		pool: pool,
	}
}

const seatColumns = `
	id, showtime_id, hall_id, row_label, number, status,
	is_wheelchair_accessible, is_vip,
	hold_id, hold_owner, hold_expires_at, hold_placed_at, ticket_id, updated_at
`

func scanSeat(row pgx.Row) (*model.Seat, error) {
	var seat model.Seat
	err := row.Scan(
		&seat.ID,
		&seat.ShowtimeID,
		&seat.HallID,
		&seat.Row,
		&seat.Number,
		&seat.Status,
		&seat.IsWheelchairAccessible,
		&seat.IsVIP,
		&seat.HoldID,
		&seat.HoldOwner,
		&seat.HoldExpiresAt,
		&seat.HoldPlacedAt,
		&seat.TicketID,
		&seat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *SeatRepositoryImpl) collectSeats(rows pgx.Rows) ([]*model.Seat, error) {
	defer rows.Close()

	seats := make([]*model.Seat, 0)
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *SeatRepositoryImpl) ListByShowtime(ctx context.Context, showtimeID int) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE showtime_id = $1
		ORDER BY row_label, number
	`

	rows, err := r.pool.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}

	return r.collectSeats(rows)
}

func (r *SeatRepositoryImpl) ListByHoldID(ctx context.Context, holdID uuid.UUID) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE hold_id = $1
		ORDER BY row_label, number
	`

	rows, err := r.pool.Query(ctx, query, holdID)
	if err != nil {
		return nil, err
	}

	return r.collectSeats(rows)
}

func (r *SeatRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE id = $1
	`

	seat, err := scanSeat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSeatUnavailable
		}
		return nil, err
	}

	return seat, nil
}

func (r *SeatRepositoryImpl) ListExpiredHeld(ctx context.Context, now time.Time, limit int) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE status = 'held' AND hold_expires_at <= $1
		ORDER BY hold_expires_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}

	return r.collectSeats(rows)
}

func (r *SeatRepositoryImpl) ListExpiredHeldByShowtime(ctx context.Context, showtimeID int, now time.Time) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE showtime_id = $1 AND status = 'held' AND hold_expires_at <= $2
	`

	rows, err := r.pool.Query(ctx, query, showtimeID, now)
	if err != nil {
		return nil, err
	}

	return r.collectSeats(rows)
}

// casQuery 是唯一的變更路徑。比較鍵是 (status, hold_id)：
// hold_id 用 IS NOT DISTINCT FROM，讓 NULL 也參與比較，
// 因此拿著舊 hold 的人絕對改不動已被重新佔用的座位。
const casQuery = `
	UPDATE seats
	SET status = $1,
		hold_id = $2,
		hold_owner = $3,
		hold_expires_at = $4,
		hold_placed_at = $5,
		ticket_id = $6,
		updated_at = $7
	WHERE id = $8
	  AND status = $9
	  AND hold_id IS NOT DISTINCT FROM $10
`

func (r *SeatRepositoryImpl) CompareAndSetStatus(ctx context.Context, seatID int, expected model.SeatState, next model.SeatUpdate) error {
	result, err := r.pool.Exec(ctx, casQuery,
		next.Status, next.HoldID, next.HoldOwner, next.HoldExpiresAt, next.HoldPlacedAt, next.TicketID,
		time.Now().UTC(),
		seatID, expected.Status, expected.HoldID,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSeatConflict
	}

	return nil
}

func (r *SeatRepositoryImpl) CompareAndSetStatusTx(ctx context.Context, tx pgx.Tx, seatID int, expected model.SeatState, next model.SeatUpdate) error {
	result, err := tx.Exec(ctx, casQuery,
		next.Status, next.HoldID, next.HoldOwner, next.HoldExpiresAt, next.HoldPlacedAt, next.TicketID,
		time.Now().UTC(),
		seatID, expected.Status, expected.HoldID,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSeatConflict
	}

	return nil
}

func (r *SeatRepositoryImpl) CreateBatchTx(ctx context.Context, tx pgx.Tx, seats []*model.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO seats (showtime_id, hall_id, row_label, number, status, is_wheelchair_accessible, is_vip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, seat := range seats {
		batch.Queue(query,
			seat.ShowtimeID, seat.HallID, seat.Row, seat.Number,
			seat.Status, seat.IsWheelchairAccessible, seat.IsVIP,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range seats {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}
