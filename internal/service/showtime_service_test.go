package service

import (
	"context"
	"testing"
	"time"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeatGrid(t *testing.T) {
	hall := &model.Hall{ID: 3, TotalRows: 4, SeatsPerRow: 5}

	seats := buildSeatGrid(7, hall)
	require.Len(t, seats, 20)

	t.Run("rows labelled from A", func(t *testing.T) {
		assert.Equal(t, "A", seats[0].Row)
		assert.Equal(t, 1, seats[0].Number)
		assert.Equal(t, "D", seats[19].Row)
		assert.Equal(t, 5, seats[19].Number)
	})

	t.Run("A1 is the wheelchair seat", func(t *testing.T) {
		for _, seat := range seats {
			wantAccessible := seat.Row == "A" && seat.Number == 1
			assert.Equal(t, wantAccessible, seat.IsWheelchairAccessible, "seat %s", seat.Label())
		}
	})

	t.Run("last row is VIP", func(t *testing.T) {
		for _, seat := range seats {
			assert.Equal(t, seat.Row == "D", seat.IsVIP, "seat %s", seat.Label())
		}
	})

	t.Run("all seats start available and bound to the showtime", func(t *testing.T) {
		for _, seat := range seats {
			assert.Equal(t, model.SeatStatusAvailable, seat.Status)
			assert.Equal(t, 7, seat.ShowtimeID)
			assert.Equal(t, 3, seat.HallID)
		}
	})
}

func newShowtimeService() ShowtimeService {
	return NewShowtimeService(
		getTestDB(),
		repository.NewShowtimeRepository(getTestDB()),
		repository.NewMovieRepository(getTestDB()),
		repository.NewHallRepository(getTestDB()),
		repository.NewSeatRepository(getTestDB()),
		NewAuditRecorder(nil),
	)
}

func TestCreateShowtime(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	svc := newShowtimeService()

	movieID := createTestMovie(t, "Showtime Movie")
	hallID := createTestHall(t, "Showtime Hall", 3, 4)

	t.Run("creates showtime with full seat grid", func(t *testing.T) {
		created, err := svc.CreateShowtime(ctx, &model.CreateShowtimeRequest{
			MovieID:      movieID,
			HallID:       hallID,
			ShowDateTime: time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
			ViewType:     "IMAX",
			Price:        420,
		})
		require.NoError(t, err)
		assert.True(t, created.IsActive)
		assert.Equal(t, "IMAX", created.ViewType)

		seats, err := repository.NewSeatRepository(getTestDB()).ListByShowtime(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, seats, 12)
	})

	t.Run("bad datetime rejected", func(t *testing.T) {
		_, err := svc.CreateShowtime(ctx, &model.CreateShowtimeRequest{
			MovieID:      movieID,
			HallID:       hallID,
			ShowDateTime: "next tuesday",
			Price:        420,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown movie rejected", func(t *testing.T) {
		_, err := svc.CreateShowtime(ctx, &model.CreateShowtimeRequest{
			MovieID:      999999,
			HallID:       hallID,
			ShowDateTime: time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
			Price:        420,
		})
		assert.ErrorIs(t, err, apperrors.ErrMovieNotFound)
	})

	t.Run("unknown hall rejected and nothing is created", func(t *testing.T) {
		_, err := svc.CreateShowtime(ctx, &model.CreateShowtimeRequest{
			MovieID:      movieID,
			HallID:       999999,
			ShowDateTime: time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
			Price:        420,
		})
		assert.ErrorIs(t, err, apperrors.ErrHallNotFound)
	})
}
