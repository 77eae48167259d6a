package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"go-cinema-booking/config"
	"go-cinema-booking/internal/database"
	"go-cinema-booking/internal/issuer"
	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/payment"
	"go-cinema-booking/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	if err := testDB.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping test database: %v", err)
	}

	log.Println("Test database connected successfully")
	log.Println("Running service tests...")

	code := m.Run()

	testDB.Close()
	log.Println("Test database closed")

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()

	_, err := testDB.Exec(ctx, "TRUNCATE action_logs, tickets, seats, showtimes, halls, movies RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	return func() {}
}

func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

func createTestMovie(t *testing.T, title string) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO movies (title, description, genre, duration, release_date, director, actors, is_active)
		VALUES ($1, '', 'Drama', 120, '2026-01-01', '', '', TRUE)
		RETURNING id
	`

	var id int
	if err := testDB.QueryRow(ctx, query, title).Scan(&id); err != nil {
		t.Fatalf("Failed to create test movie: %v", err)
	}

	return id
}

func createTestHall(t *testing.T, name string, totalRows, seatsPerRow int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO halls (name, total_rows, seats_per_row)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int
	if err := testDB.QueryRow(ctx, query, name, totalRows, seatsPerRow).Scan(&id); err != nil {
		t.Fatalf("Failed to create test hall: %v", err)
	}

	return id
}

func createTestShowtime(t *testing.T, movieID, hallID int, price float64) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO showtimes (movie_id, hall_id, show_datetime, view_type, price, is_active)
		VALUES ($1, $2, NOW() + INTERVAL '1 day', '2D', $3, TRUE)
		RETURNING id
	`

	var id int
	if err := testDB.QueryRow(ctx, query, movieID, hallID, price).Scan(&id); err != nil {
		t.Fatalf("Failed to create test showtime: %v", err)
	}

	return id
}

func createTestSeats(t *testing.T, showtimeID, hallID, count int) []int {
	t.Helper()
	ctx := context.Background()

	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		query := `
			INSERT INTO seats (showtime_id, hall_id, row_label, number, status)
			VALUES ($1, $2, 'A', $3, 'available')
			RETURNING id
		`

		var id int
		if err := testDB.QueryRow(ctx, query, showtimeID, hallID, i+1).Scan(&id); err != nil {
			t.Fatalf("Failed to create test seat: %v", err)
		}
		ids = append(ids, id)
	}

	return ids
}

// bookingFixture 建好電影、影廳、場次與座位，回傳可用的 booking service
type bookingFixture struct {
	service    BookingService
	seatRepo   repository.SeatRepository
	ticketRepo repository.TicketRepository
	showtimeID int
	seatIDs    []int
	price      float64
}

func newBookingFixture(t *testing.T, seatCount int, holdDuration time.Duration) *bookingFixture {
	t.Helper()

	movieID := createTestMovie(t, "Fixture Movie")
	hallID := createTestHall(t, "Fixture Hall", 4, 10)
	price := 350.0
	showtimeID := createTestShowtime(t, movieID, hallID, price)
	seatIDs := createTestSeats(t, showtimeID, hallID, seatCount)

	seatRepo := repository.NewSeatRepository(getTestDB())
	showtimeRepo := repository.NewShowtimeRepository(getTestDB())
	ticketRepo := repository.NewTicketRepository(getTestDB())
	ticketIssuer := issuer.NewTicketIssuer(ticketRepo.NumberExists)
	gateway := payment.NewSimulatorGateway()
	audit := NewAuditRecorder(nil)

	svc := NewBookingService(
		getTestDB(), seatRepo, showtimeRepo, ticketRepo, ticketIssuer, gateway,
		nil, audit,
		BookingConfig{
			HoldDuration:   holdDuration,
			PaymentTimeout: 5 * time.Second,
		},
	)

	return &bookingFixture{
		service:    svc,
		seatRepo:   seatRepo,
		ticketRepo: ticketRepo,
		showtimeID: showtimeID,
		seatIDs:    seatIDs,
		price:      price,
	}
}

func validTestCard() payment.Card {
	return payment.Card{
		Number:      "4242424242424242",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().UTC().AddDate(2, 0, 0).Year(),
		CVC:         "123",
		NameOnCard:  "Test User",
	}
}

func declinedTestCard() payment.Card {
	card := validTestCard()
	card.Number = "4242424242420002"
	return card
}

func seatStatusInDB(t *testing.T, seatID int) model.SeatStatus {
	t.Helper()
	ctx := context.Background()

	var status model.SeatStatus
	if err := testDB.QueryRow(ctx, "SELECT status FROM seats WHERE id = $1", seatID).Scan(&status); err != nil {
		t.Fatalf("Failed to read seat status: %v", err)
	}
	return status
}
