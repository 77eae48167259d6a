package service

import (
	"context"
	"testing"
	"time"

	"go-cinema-booking/internal/model"
	apperrors "go-cinema-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceHold(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("holds all requested seats", func(t *testing.T) {
		f := newBookingFixture(t, 3, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs[:2], "owner-1")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, hold.HoldID)
		assert.Equal(t, f.showtimeID, hold.ShowtimeID)
		assert.Equal(t, f.seatIDs[:2], hold.SeatIDs)
		assert.Equal(t, 700.0, hold.TotalPrice)

		for _, seatID := range f.seatIDs[:2] {
			assert.Equal(t, model.SeatStatusHeld, seatStatusInDB(t, seatID))
		}
		assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, f.seatIDs[2]))
	})

	t.Run("all or nothing on conflict", func(t *testing.T) {
		f := newBookingFixture(t, 3, 10*time.Minute)

		_, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs[1:2], "owner-1")
		require.NoError(t, err)

		_, err = f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs[:3], "owner-2")

		var unavailable *apperrors.SeatUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, []int{f.seatIDs[1]}, unavailable.SeatIDs)

		// the seats that were free must stay free, nothing half-held
		assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, f.seatIDs[0]))
		assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, f.seatIDs[2]))
	})

	t.Run("seat from another showtime is rejected", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)
		other := newBookingFixture(t, 1, 10*time.Minute)

		_, err := f.service.PlaceHold(ctx, f.showtimeID, other.seatIDs, "owner-1")

		var unavailable *apperrors.SeatUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("expired hold is lazily reclaimed", func(t *testing.T) {
		f := newBookingFixture(t, 1, 50*time.Millisecond)

		_, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-2")
		require.NoError(t, err)
		assert.Equal(t, f.seatIDs, hold.SeatIDs)
	})

	t.Run("duplicate seat ids collapse to one", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID,
			[]int{f.seatIDs[0], f.seatIDs[0]}, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, []int{f.seatIDs[0]}, hold.SeatIDs)
	})

	t.Run("unknown showtime", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		_, err := f.service.PlaceHold(ctx, 999999, f.seatIDs, "owner-1")
		assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)
	})
}

func TestReleaseHold(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("owner releases their hold", func(t *testing.T) {
		f := newBookingFixture(t, 2, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		require.NoError(t, f.service.ReleaseHold(ctx, hold.HoldID, "owner-1"))

		for _, seatID := range f.seatIDs {
			assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, seatID))
		}
	})

	t.Run("release is idempotent", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		require.NoError(t, f.service.ReleaseHold(ctx, hold.HoldID, "owner-1"))
		assert.NoError(t, f.service.ReleaseHold(ctx, hold.HoldID, "owner-1"))
		assert.NoError(t, f.service.ReleaseHold(ctx, uuid.New(), "owner-1"))
	})

	t.Run("someone else cannot release it", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		err = f.service.ReleaseHold(ctx, hold.HoldID, "owner-2")
		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
		assert.Equal(t, model.SeatStatusHeld, seatStatusInDB(t, f.seatIDs[0]))
	})
}

func TestConfirm(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("issues one ticket per seat", func(t *testing.T) {
		f := newBookingFixture(t, 2, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		tickets, err := f.service.Confirm(ctx, hold.HoldID, "owner-1", validTestCard())
		require.NoError(t, err)
		require.Len(t, tickets, 2)

		for _, ticket := range tickets {
			assert.Equal(t, model.TicketStatusConfirmed, ticket.Status)
			assert.Equal(t, f.price, ticket.Price)
			assert.Regexp(t, `^TKT-\d{8}-[0-9A-F]{8}$`, ticket.TicketNumber)
			assert.NotEmpty(t, ticket.Barcode)
		}

		for _, seatID := range f.seatIDs {
			assert.Equal(t, model.SeatStatusBooked, seatStatusInDB(t, seatID))
		}

		// the hold is consumed
		seats, err := f.seatRepo.ListByHoldID(ctx, hold.HoldID)
		require.NoError(t, err)
		assert.Empty(t, seats)
	})

	t.Run("declined payment leaves seats held", func(t *testing.T) {
		f := newBookingFixture(t, 2, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		_, err = f.service.Confirm(ctx, hold.HoldID, "owner-1", declinedTestCard())
		assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)

		// customer keeps the hold to retry with another card
		for _, seatID := range f.seatIDs {
			assert.Equal(t, model.SeatStatusHeld, seatStatusInDB(t, seatID))
		}

		// retry with a good card still works
		tickets, err := f.service.Confirm(ctx, hold.HoldID, "owner-1", validTestCard())
		require.NoError(t, err)
		assert.Len(t, tickets, 2)
	})

	t.Run("expired hold cannot be confirmed", func(t *testing.T) {
		f := newBookingFixture(t, 1, 50*time.Millisecond)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		_, err = f.service.Confirm(ctx, hold.HoldID, "owner-1", validTestCard())
		assert.ErrorIs(t, err, apperrors.ErrHoldExpired)
		assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, f.seatIDs[0]))
	})

	t.Run("wrong owner cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		_, err = f.service.Confirm(ctx, hold.HoldID, "owner-2", validTestCard())
		assert.ErrorIs(t, err, apperrors.ErrNotOwner)
	})

	t.Run("unknown hold", func(t *testing.T) {
		f := newBookingFixture(t, 1, 10*time.Minute)

		_, err := f.service.Confirm(ctx, uuid.New(), "owner-1", validTestCard())
		assert.ErrorIs(t, err, apperrors.ErrHoldNotFound)
	})

	t.Run("losing the race releases the rest of the hold", func(t *testing.T) {
		f := newBookingFixture(t, 2, 10*time.Minute)

		hold, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		// a sweeper stole one seat between validation and commit
		err = f.seatRepo.CompareAndSetStatus(ctx, f.seatIDs[0],
			model.HeldState(hold.HoldID), model.ReleaseUpdate())
		require.NoError(t, err)

		_, err = f.service.Confirm(ctx, hold.HoldID, "owner-1", validTestCard())
		assert.ErrorIs(t, err, apperrors.ErrReservationRaceLost)

		// no partial bookings, no stranded held seats
		for _, seatID := range f.seatIDs {
			assert.Equal(t, model.SeatStatusAvailable, seatStatusInDB(t, seatID))
		}

		tickets, err := f.ticketRepo.ListByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})
}

func TestGetSeatMap(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("reports live statuses", func(t *testing.T) {
		f := newBookingFixture(t, 3, 10*time.Minute)

		_, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs[:1], "owner-1")
		require.NoError(t, err)

		seatMap, err := f.service.GetSeatMap(ctx, f.showtimeID)
		require.NoError(t, err)

		assert.Equal(t, f.showtimeID, seatMap.ShowtimeID)
		assert.Equal(t, f.price, seatMap.Price)
		require.Len(t, seatMap.Seats, 3)

		statuses := map[int]string{}
		for _, view := range seatMap.Seats {
			statuses[view.ID] = view.Status
		}
		assert.Equal(t, "held", statuses[f.seatIDs[0]])
		assert.Equal(t, "available", statuses[f.seatIDs[1]])
	})

	t.Run("expired holds show as available", func(t *testing.T) {
		f := newBookingFixture(t, 1, 50*time.Millisecond)

		_, err := f.service.PlaceHold(ctx, f.showtimeID, f.seatIDs, "owner-1")
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		seatMap, err := f.service.GetSeatMap(ctx, f.showtimeID)
		require.NoError(t, err)
		assert.Equal(t, "available", seatMap.Seats[0].Status)
	})

	t.Run("unknown showtime", func(t *testing.T) {
		_, err := newBookingFixture(t, 1, 10*time.Minute).service.GetSeatMap(ctx, 999999)
		assert.ErrorIs(t, err, apperrors.ErrShowtimeNotFound)
	})
}
