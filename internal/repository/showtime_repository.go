package repository

import (
	"context"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShowtimeRepository interface {
	ListByMovie(ctx context.Context, movieID int) ([]*model.Showtime, error)
	FindByID(ctx context.Context, id int) (*model.Showtime, error)
	Deactivate(ctx context.Context, id int) error

	// Transaction methods
	CreateTx(ctx context.Context, tx pgx.Tx, showtime *model.Showtime) (*model.Showtime, error)
}

type ShowtimeRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewShowtimeRepository(pool *pgxpool.Pool) ShowtimeRepository {
	return &ShowtimeRepositoryImpl{
		pool: pool,
	}
}

const showtimeColumns = `id, movie_id, hall_id, show_datetime, view_type, price, is_active, created_at`

func scanShowtime(row pgx.Row) (*model.Showtime, error) {
	var s model.Showtime
	err := row.Scan(
		&s.ID,
		&s.MovieID,
		&s.HallID,
		&s.ShowDateTime,
		&s.ViewType,
		&s.Price,
		&s.IsActive,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShowtimeRepositoryImpl) CreateTx(ctx context.Context, tx pgx.Tx, showtime *model.Showtime) (*model.Showtime, error) {
	query := `
		INSERT INTO showtimes (movie_id, hall_id, show_datetime, view_type, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + showtimeColumns + `
	`

	return scanShowtime(tx.QueryRow(ctx, query,
		showtime.MovieID, showtime.HallID, showtime.ShowDateTime,
		showtime.ViewType, showtime.Price, showtime.IsActive,
	))
}

func (r *ShowtimeRepositoryImpl) ListByMovie(ctx context.Context, movieID int) ([]*model.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE movie_id = $1 AND is_active = TRUE
		ORDER BY show_datetime
	`

	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]*model.Showtime, 0)
	for rows.Next() {
		showtime, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		showtimes = append(showtimes, showtime)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}

func (r *ShowtimeRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE id = $1
	`

	showtime, err := scanShowtime(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrShowtimeNotFound
		}
		return nil, err
	}

	return showtime, nil
}

func (r *ShowtimeRepositoryImpl) Deactivate(ctx context.Context, id int) error {
	query := `
		UPDATE showtimes
		SET is_active = FALSE
		WHERE id = $1 AND is_active = TRUE
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrShowtimeNotFound
	}

	return nil
}
