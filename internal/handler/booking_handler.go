package handler

import (
	"errors"
	"net/http"
	"time"

	"go-cinema-booking/internal/middleware"
	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/payment"
	"go-cinema-booking/internal/service"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine, identity gin.HandlerFunc) {
	router := r.Group("/api/v1", identity)
	{
		router.GET("showtimes/:id/seats", h.GetSeatMap)
		router.POST("showtimes/:id/holds", h.PlaceHold)
		router.DELETE("holds/:hold_id", h.ReleaseHold)
		router.POST("holds/:hold_id/confirm", h.Confirm)
	}
}

func (h *BookingHandler) GetSeatMap(c *gin.Context) {
	showtimeID, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	seatMap, err := h.service.GetSeatMap(c, showtimeID)
	if err != nil {
		h.handleBookingError(c, err, "GetSeatMap")
		return
	}

	c.JSON(http.StatusOK, seatMap)
}

func (h *BookingHandler) PlaceHold(c *gin.Context) {
	showtimeID, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	var req model.PlaceHoldRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	hold, err := h.service.PlaceHold(c, showtimeID, req.SeatIDs, middleware.OwnerToken(c))
	if err != nil {
		h.handleBookingError(c, err, "PlaceHold")
		return
	}

	c.JSON(http.StatusCreated, hold)
}

func (h *BookingHandler) ReleaseHold(c *gin.Context) {
	holdID, ok := ParamUUID(c, "hold_id")
	if !ok {
		return
	}

	if err := h.service.ReleaseHold(c, holdID, middleware.OwnerToken(c)); err != nil {
		h.handleBookingError(c, err, "ReleaseHold")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	holdID, ok := ParamUUID(c, "hold_id")
	if !ok {
		return
	}

	var req model.ConfirmRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	card := payment.Card{
		Number:      req.CardNumber,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVC:         req.CVC,
		NameOnCard:  req.NameOnCard,
	}

	tickets, err := h.service.Confirm(c, holdID, middleware.OwnerToken(c), card)
	if err != nil {
		h.handleBookingError(c, err, "Confirm")
		return
	}

	responses := make([]*model.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		responses = append(responses, &model.TicketResponse{
			TicketNumber: t.TicketNumber,
			ShowtimeID:   t.ShowtimeID,
			SeatID:       t.SeatID,
			Price:        t.Price,
			Status:       string(t.Status),
			Barcode:      t.Barcode,
			IssuedAt:     t.IssuedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"tickets": responses})
}

// Helper functions

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var seatUnavailable *apperrors.SeatUnavailableError

	switch {
	case errors.As(err, &seatUnavailable):
		log.Warn("Seats unavailable")
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Seats unavailable",
			"seat_ids": seatUnavailable.SeatIDs,
		})
	case errors.Is(err, apperrors.ErrHoldNotFound):
		log.Warn("Hold not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Hold not found",
		})
	case errors.Is(err, apperrors.ErrHoldExpired):
		log.Warn("Hold expired")
		c.JSON(http.StatusGone, gin.H{
			"error": "Hold expired",
		})
	case errors.Is(err, apperrors.ErrNotOwner):
		log.Warn("Not hold owner")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not hold owner",
		})
	case errors.Is(err, apperrors.ErrPaymentDeclined):
		log.Warn("Payment declined")
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": "Payment declined",
		})
	case errors.Is(err, apperrors.ErrReservationRaceLost):
		log.Warn("Reservation race lost")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Reservation could not be completed, seats were released",
		})
	case errors.Is(err, apperrors.ErrShowtimeNotFound):
		log.Warn("Showtime not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Showtime not found",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
