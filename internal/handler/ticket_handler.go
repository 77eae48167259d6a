package handler

import (
	"errors"
	"net/http"

	"go-cinema-booking/internal/middleware"
	"go-cinema-booking/internal/service"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine, identity, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", identity)
	{
		router.GET("tickets", h.ListTickets)
		router.GET("tickets/:ticket_id", h.GetTicket)
		router.PUT("tickets/:ticket_id/cancel", h.CancelTicket)
	}

	adminRouter := r.Group("/api/v1", identity, admin)
	{
		adminRouter.PUT("tickets/validate/:number", h.ValidateTicket)
	}
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	tickets, err := h.service.ListTickets(c, middleware.OwnerToken(c))
	if err != nil {
		h.handleTicketError(c, err, "ListTickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID, ok := ParamUUID(c, "ticket_id")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(c, ticketID, middleware.OwnerToken(c))
	if err != nil {
		h.handleTicketError(c, err, "GetTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) CancelTicket(c *gin.Context) {
	ticketID, ok := ParamUUID(c, "ticket_id")
	if !ok {
		return
	}

	cancelled, err := h.service.CancelTicket(c, ticketID, middleware.OwnerToken(c))
	if err != nil {
		h.handleTicketError(c, err, "CancelTicket")
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

func (h *TicketHandler) ValidateTicket(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ticket number",
		})
		return
	}

	used, err := h.service.ValidateTicket(c, number)
	if err != nil {
		h.handleTicketError(c, err, "ValidateTicket")
		return
	}

	c.JSON(http.StatusOK, used)
}

func (h *TicketHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrNotOwner):
		log.Warn("Not ticket owner")
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not ticket owner",
		})
	case errors.Is(err, apperrors.ErrInvalidTicketStatus):
		log.Warn("Invalid ticket status")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket status does not allow this operation",
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
