package main

import (
	"context"
	"log"

	"go-cinema-booking/config"
	"go-cinema-booking/internal/cache"
	"go-cinema-booking/internal/database"
	"go-cinema-booking/internal/handler"
	"go-cinema-booking/internal/issuer"
	"go-cinema-booking/internal/middleware"
	"go-cinema-booking/internal/payment"
	"go-cinema-booking/internal/queue"
	"go-cinema-booking/internal/repository"
	"go-cinema-booking/internal/service"
	"go-cinema-booking/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Repositories
	seatRepo := repository.NewSeatRepository(pool)
	movieRepo := repository.NewMovieRepository(pool)
	hallRepo := repository.NewHallRepository(pool)
	showtimeRepo := repository.NewShowtimeRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	actionLogRepo := repository.NewActionLogRepository(pool)

	// 稽核事件隊列：依部署環境選 driver
	var auditQueue queue.AuditQueue
	switch cfg.Queue.AuditDriver {
	case "redis":
		auditQueue, err = queue.NewRedisStreamAuditQueue(rdb, "", nil)
		if err != nil {
			log.Fatalf("Failed to initialize redis audit queue: %v", err)
		}
	case "rabbitmq":
		auditQueue, err = queue.NewRabbitMQAuditQueue(cfg.Queue.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to initialize rabbitmq audit queue: %v", err)
		}
	default:
		auditQueue = queue.NewAuditQueue(1024)
	}
	audit := service.NewAuditRecorder(auditQueue)

	seatMapCache := cache.NewSeatMapCache(rdb, cfg.Booking.SeatMapTTL)
	gateway := payment.NewSimulatorGateway()
	ticketIssuer := issuer.NewTicketIssuer(ticketRepo.NumberExists)

	// Services
	bookingService := service.NewBookingService(
		pool, seatRepo, showtimeRepo, ticketRepo, ticketIssuer, gateway,
		seatMapCache, audit,
		service.BookingConfig{
			HoldDuration:   cfg.Booking.HoldDuration,
			PaymentTimeout: cfg.Booking.PaymentTimeout,
		},
	)
	movieService := service.NewMovieService(movieRepo, audit)
	hallService := service.NewHallService(hallRepo, audit)
	showtimeService := service.NewShowtimeService(pool, showtimeRepo, movieRepo, hallRepo, seatRepo, audit)
	ticketService := service.NewTicketService(pool, ticketRepo, seatRepo, seatMapCache, audit)

	// Background workers
	ctx := context.Background()

	sweeper := worker.NewExpirySweeper(seatRepo, seatMapCache, cfg.Booking.SweepInterval)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("Failed to start expiry sweeper: %v", err)
	}

	auditWorker := worker.NewAuditWorker(actionLogRepo, auditQueue)
	if err := auditWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start audit worker: %v", err)
	}

	// HTTP
	identity := middleware.Identity(cfg.Auth.JWTSecret)
	admin := middleware.RequireRole("admin")

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewBookingHandler(bookingService).RegisterRoutes(router, identity)
	handler.NewMovieHandler(movieService).RegisterRoutes(router, identity, admin)
	handler.NewHallHandler(hallService).RegisterRoutes(router, identity, admin)
	handler.NewShowtimeHandler(showtimeService).RegisterRoutes(router, identity, admin)
	handler.NewTicketHandler(ticketService).RegisterRoutes(router, identity, admin)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
