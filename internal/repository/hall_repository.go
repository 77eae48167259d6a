package repository

import (
	"context"
	"time"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HallRepository interface {
	Create(ctx context.Context, hall *model.Hall) (*model.Hall, error)
	List(ctx context.Context) ([]*model.Hall, error)
	FindByID(ctx context.Context, id int) (*model.Hall, error)
	Rename(ctx context.Context, id int, name string) (*model.Hall, error)
	Delete(ctx context.Context, id int) error
}

type HallRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewHallRepository(pool *pgxpool.Pool) HallRepository {
	return &HallRepositoryImpl{
		pool: pool,
	}
}

const hallColumns = `id, name, total_rows, seats_per_row, created_at, updated_at, deleted_at`

func scanHall(row pgx.Row) (*model.Hall, error) {
	var h model.Hall
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.TotalRows,
		&h.SeatsPerRow,
		&h.CreatedAt,
		&h.UpdatedAt,
		&h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HallRepositoryImpl) Create(ctx context.Context, hall *model.Hall) (*model.Hall, error) {
	query := `
		INSERT INTO halls (name, total_rows, seats_per_row)
		VALUES ($1, $2, $3)
		RETURNING ` + hallColumns + `
	`

	return scanHall(r.pool.QueryRow(ctx, query, hall.Name, hall.TotalRows, hall.SeatsPerRow))
}

func (r *HallRepositoryImpl) List(ctx context.Context) ([]*model.Hall, error) {
	query := `
		SELECT ` + hallColumns + `
		FROM halls
		WHERE deleted_at IS NULL
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	halls := make([]*model.Hall, 0)
	for rows.Next() {
		hall, err := scanHall(rows)
		if err != nil {
			return nil, err
		}
		halls = append(halls, hall)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return halls, nil
}

func (r *HallRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Hall, error) {
	query := `
		SELECT ` + hallColumns + `
		FROM halls
		WHERE id = $1 AND deleted_at IS NULL
	`

	hall, err := scanHall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrHallNotFound
		}
		return nil, err
	}

	return hall, nil
}

// Rename 只允許改名。列數與每列座位數決定既有場次的座位幾何，不開放修改。
func (r *HallRepositoryImpl) Rename(ctx context.Context, id int, name string) (*model.Hall, error) {
	query := `
		UPDATE halls
		SET name = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING ` + hallColumns + `
	`

	hall, err := scanHall(r.pool.QueryRow(ctx, query, name, time.Now().UTC(), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrHallNotFound
		}
		return nil, err
	}

	return hall, nil
}

func (r *HallRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE halls
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrHallNotFound
	}

	return nil
}
