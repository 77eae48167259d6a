package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) (*model.Movie, error)
	List(ctx context.Context, query model.MovieListQuery) ([]*model.Movie, int, error)
	FindByID(ctx context.Context, id int) (*model.Movie, error)
	Update(ctx context.Context, id int, values map[string]interface{}) (*model.Movie, error)
	Delete(ctx context.Context, id int) error
}

type MovieRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewMovieRepository(pool *pgxpool.Pool) MovieRepository {
	return &MovieRepositoryImpl{
		pool: pool,
	}
}

const movieColumns = `
	id, title, description, genre, duration, release_date, poster_url,
	director, actors, is_active, created_at, updated_at, deleted_at
`

func scanMovie(row pgx.Row) (*model.Movie, error) {
	var m model.Movie
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.Genre,
		&m.Duration,
		&m.ReleaseDate,
		&m.PosterURL,
		&m.Director,
		&m.Actors,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepositoryImpl) Create(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	query := `
		INSERT INTO movies (title, description, genre, duration, release_date, poster_url, director, actors, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + movieColumns + `
	`

	return scanMovie(r.pool.QueryRow(ctx, query,
		movie.Title, movie.Description, movie.Genre, movie.Duration,
		movie.ReleaseDate, movie.PosterURL, movie.Director, movie.Actors, movie.IsActive,
	))
}

func (r *MovieRepositoryImpl) List(ctx context.Context, q model.MovieListQuery) ([]*model.Movie, int, error) {
	where := "deleted_at IS NULL"
	args := []interface{}{}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where += fmt.Sprintf(" AND (title ILIKE $%d OR genre ILIKE $%d)", len(args), len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM movies WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	query := fmt.Sprintf(`
		SELECT `+movieColumns+`
		FROM movies
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	movies := make([]*model.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return movies, total, nil
}

func (r *MovieRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Movie, error) {
	query := `
		SELECT ` + movieColumns + `
		FROM movies
		WHERE id = $1 AND deleted_at IS NULL
	`

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMovieNotFound
		}
		return nil, err
	}

	return movie, nil
}

func (r *MovieRepositoryImpl) Update(ctx context.Context, id int, values map[string]interface{}) (*model.Movie, error) {
	allowedFields := map[string]bool{
		"title":       true,
		"description": true,
		"genre":       true,
		"duration":    true,
		"poster_url":  true,
		"director":    true,
		"actors":      true,
		"is_active":   true,
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	for column, value := range values {
		if ok := allowedFields[column]; !ok {
			return nil, apperrors.ErrInvalidInput
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE movies
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING `+movieColumns+`
	`, strings.Join(sets, ", "), argPos)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrMovieNotFound
		}
		return nil, err
	}

	return movie, nil
}

func (r *MovieRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		UPDATE movies
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	// check if movie exists and not already deleted
	if result.RowsAffected() == 0 {
		return apperrors.ErrMovieNotFound
	}

	return nil
}
