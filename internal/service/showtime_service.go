package service

import (
	"context"
	"time"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShowtimeService interface {
	// CreateShowtime 建立場次並依影廳幾何一次生成全部座位
	CreateShowtime(ctx context.Context, req *model.CreateShowtimeRequest) (*model.Showtime, error)
	ListShowtimes(ctx context.Context, movieID int) ([]*model.Showtime, error)
	GetShowtime(ctx context.Context, id int) (*model.Showtime, error)
	DeactivateShowtime(ctx context.Context, id int) error
}

type ShowtimeServiceImpl struct {
	pool         *pgxpool.Pool
	showtimeRepo repository.ShowtimeRepository
	movieRepo    repository.MovieRepository
	hallRepo     repository.HallRepository
	seatRepo     repository.SeatRepository
	audit        *AuditRecorder
}

func NewShowtimeService(
	pool *pgxpool.Pool,
	showtimeRepo repository.ShowtimeRepository,
	movieRepo repository.MovieRepository,
	hallRepo repository.HallRepository,
	seatRepo repository.SeatRepository,
	audit *AuditRecorder,
) ShowtimeService {
	return &ShowtimeServiceImpl{
		pool:         pool,
		showtimeRepo: showtimeRepo,
		movieRepo:    movieRepo,
		hallRepo:     hallRepo,
		seatRepo:     seatRepo,
		audit:        audit,
	}
}

func (s *ShowtimeServiceImpl) CreateShowtime(ctx context.Context, req *model.CreateShowtimeRequest) (*model.Showtime, error) {
	showDateTime, err := time.Parse(time.RFC3339, req.ShowDateTime)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}

	movie, err := s.movieRepo.FindByID(ctx, req.MovieID)
	if err != nil {
		return nil, err
	}
	if !movie.IsActive {
		return nil, apperrors.ErrMovieNotFound
	}

	hall, err := s.hallRepo.FindByID(ctx, req.HallID)
	if err != nil {
		return nil, err
	}

	viewType := req.ViewType
	if viewType == "" {
		viewType = "2D"
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := s.showtimeRepo.CreateTx(ctx, tx, &model.Showtime{
		MovieID:      req.MovieID,
		HallID:       req.HallID,
		ShowDateTime: showDateTime,
		ViewType:     viewType,
		Price:        req.Price,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	seats := buildSeatGrid(created.ID, hall)
	if err := s.seatRepo.CreateBatchTx(ctx, tx, seats); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Create", "Showtime", &created.ID, viewType)
	return created, nil
}

// buildSeatGrid 依影廳幾何生成座位：列標 A 起算，A1 為輪椅席，
// 最後一列為 VIP 席。
func buildSeatGrid(showtimeID int, hall *model.Hall) []*model.Seat {
	seats := make([]*model.Seat, 0, hall.Capacity())
	for row := 0; row < hall.TotalRows; row++ {
		rowLabel := string(rune('A' + row))
		for number := 1; number <= hall.SeatsPerRow; number++ {
			seats = append(seats, &model.Seat{
				ShowtimeID:             showtimeID,
				HallID:                 hall.ID,
				Row:                    rowLabel,
				Number:                 number,
				Status:                 model.SeatStatusAvailable,
				IsWheelchairAccessible: row == 0 && number == 1,
				IsVIP:                  row == hall.TotalRows-1,
			})
		}
	}
	return seats
}

func (s *ShowtimeServiceImpl) ListShowtimes(ctx context.Context, movieID int) ([]*model.Showtime, error) {
	return s.showtimeRepo.ListByMovie(ctx, movieID)
}

func (s *ShowtimeServiceImpl) GetShowtime(ctx context.Context, id int) (*model.Showtime, error) {
	return s.showtimeRepo.FindByID(ctx, id)
}

func (s *ShowtimeServiceImpl) DeactivateShowtime(ctx context.Context, id int) error {
	if err := s.showtimeRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.audit.Record("admin", "Delete", "Showtime", &id, "")
	return nil
}
