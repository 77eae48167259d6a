package issuer

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"go-cinema-booking/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketNumberPattern = regexp.MustCompile(`^TKT-\d{8}-[0-9A-F]{8}$`)

func neverExists(ctx context.Context, number string) (bool, error) {
	return false, nil
}

func TestIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("one ticket per seat", func(t *testing.T) {
		ticketIssuer := NewTicketIssuer(neverExists)

		tickets, err := ticketIssuer.Issue(ctx, "session-1", 7, []int{11, 12, 13}, 350)
		require.NoError(t, err)
		require.Len(t, tickets, 3)

		seen := map[string]bool{}
		for i, ticket := range tickets {
			assert.Equal(t, "session-1", ticket.OwnerToken)
			assert.Equal(t, 7, ticket.ShowtimeID)
			assert.Equal(t, []int{11, 12, 13}[i], ticket.SeatID)
			assert.Equal(t, 350.0, ticket.Price)
			assert.Equal(t, model.TicketStatusConfirmed, ticket.Status)
			assert.NotEqual(t, ticket.TicketID.String(), "00000000-0000-0000-0000-000000000000")

			assert.False(t, seen[ticket.TicketNumber], "ticket numbers must be unique")
			seen[ticket.TicketNumber] = true
		}
	})

	t.Run("number format is date stamped", func(t *testing.T) {
		ticketIssuer := NewTicketIssuer(neverExists)

		tickets, err := ticketIssuer.Issue(ctx, "session-1", 1, []int{1}, 100)
		require.NoError(t, err)

		number := tickets[0].TicketNumber
		assert.Regexp(t, ticketNumberPattern, number)
		assert.Contains(t, number, time.Now().UTC().Format("20060102"))
	})

	t.Run("barcode is 20 uppercase hex chars", func(t *testing.T) {
		ticketIssuer := NewTicketIssuer(neverExists)

		tickets, err := ticketIssuer.Issue(ctx, "session-1", 1, []int{1}, 100)
		require.NoError(t, err)

		assert.Regexp(t, `^[0-9A-F]{20}$`, tickets[0].Barcode)
	})

	t.Run("retries on number collision", func(t *testing.T) {
		calls := 0
		collideOnce := func(ctx context.Context, number string) (bool, error) {
			calls++
			return calls == 1, nil
		}
		ticketIssuer := NewTicketIssuer(collideOnce)

		tickets, err := ticketIssuer.Issue(ctx, "session-1", 1, []int{1}, 100)
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		alwaysExists := func(ctx context.Context, number string) (bool, error) {
			return true, nil
		}
		ticketIssuer := NewTicketIssuer(alwaysExists)

		_, err := ticketIssuer.Issue(ctx, "session-1", 1, []int{1}, 100)
		assert.Error(t, err)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		failing := func(ctx context.Context, number string) (bool, error) {
			return false, fmt.Errorf("db is down")
		}
		ticketIssuer := NewTicketIssuer(failing)

		_, err := ticketIssuer.Issue(ctx, "session-1", 1, []int{1}, 100)
		assert.Error(t, err)
	})

	t.Run("empty seat list rejected", func(t *testing.T) {
		ticketIssuer := NewTicketIssuer(neverExists)

		_, err := ticketIssuer.Issue(ctx, "session-1", 1, nil, 100)
		assert.Error(t, err)
	})
}
