package service

import (
	"context"
	"time"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"
)

type MovieService interface {
	CreateMovie(ctx context.Context, req *model.CreateMovieRequest) (*model.Movie, error)
	ListMovies(ctx context.Context, query model.MovieListQuery) ([]*model.Movie, int, error)
	GetMovie(ctx context.Context, id int) (*model.Movie, error)
	UpdateMovie(ctx context.Context, id int, params *model.UpdateMovieParams) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id int) error
}

type MovieServiceImpl struct {
	movieRepo repository.MovieRepository
	audit     *AuditRecorder
}

func NewMovieService(movieRepo repository.MovieRepository, audit *AuditRecorder) MovieService {
	return &MovieServiceImpl{
		movieRepo: movieRepo,
		audit:     audit,
	}
}

func (s *MovieServiceImpl) CreateMovie(ctx context.Context, req *model.CreateMovieRequest) (*model.Movie, error) {
	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	movie := &model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Duration:    req.Duration,
		ReleaseDate: releaseDate,
		PosterURL:   req.PosterURL,
		Director:    req.Director,
		Actors:      req.Actors,
		IsActive:    true,
	}

	created, err := s.movieRepo.Create(ctx, movie)
	if err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Create", "Movie", &created.ID, created.Title)
	return created, nil
}

func (s *MovieServiceImpl) ListMovies(ctx context.Context, query model.MovieListQuery) ([]*model.Movie, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 10
	}

	return s.movieRepo.List(ctx, query)
}

func (s *MovieServiceImpl) GetMovie(ctx context.Context, id int) (*model.Movie, error) {
	return s.movieRepo.FindByID(ctx, id)
}

func (s *MovieServiceImpl) UpdateMovie(ctx context.Context, id int, params *model.UpdateMovieParams) (*model.Movie, error) {
	values := map[string]interface{}{}
	if params.Title != nil {
		values["title"] = *params.Title
	}
	if params.Description != nil {
		values["description"] = *params.Description
	}
	if params.Genre != nil {
		values["genre"] = *params.Genre
	}
	if params.Duration != nil {
		if *params.Duration < 1 {
			return nil, apperrors.ErrInvalidInput
		}
		values["duration"] = *params.Duration
	}
	if params.PosterURL != nil {
		values["poster_url"] = *params.PosterURL
	}
	if params.Director != nil {
		values["director"] = *params.Director
	}
	if params.Actors != nil {
		values["actors"] = *params.Actors
	}
	if params.IsActive != nil {
		values["is_active"] = *params.IsActive
	}

	if len(values) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	updated, err := s.movieRepo.Update(ctx, id, values)
	if err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Update", "Movie", &id, updated.Title)
	return updated, nil
}

func (s *MovieServiceImpl) DeleteMovie(ctx context.Context, id int) error {
	if err := s.movieRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record("admin", "Delete", "Movie", &id, "")
	return nil
}
