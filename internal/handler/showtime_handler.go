package handler

import (
	"errors"
	"net/http"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/service"
	apperrors "go-cinema-booking/pkg/app_errors"
	"go-cinema-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ShowtimeHandler struct {
	service service.ShowtimeService
}

func NewShowtimeHandler(service service.ShowtimeService) *ShowtimeHandler {
	return &ShowtimeHandler{service: service}
}

func (h *ShowtimeHandler) RegisterRoutes(r *gin.Engine, identity, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", identity)
	{
		router.GET("movies/:id/showtimes", h.ListShowtimes)
		router.GET("showtimes/:id", h.GetShowtime)
	}

	adminRouter := r.Group("/api/v1", identity, admin)
	{
		adminRouter.POST("showtimes", h.CreateShowtime)
		adminRouter.DELETE("showtimes/:id", h.DeactivateShowtime)
	}
}

func (h *ShowtimeHandler) CreateShowtime(c *gin.Context) {
	var req model.CreateShowtimeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateShowtime(c, &req)
	if err != nil {
		h.handleShowtimeError(c, err, "CreateShowtime")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ShowtimeHandler) ListShowtimes(c *gin.Context) {
	movieID, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	showtimes, err := h.service.ListShowtimes(c, movieID)
	if err != nil {
		h.handleShowtimeError(c, err, "ListShowtimes")
		return
	}

	c.JSON(http.StatusOK, showtimes)
}

func (h *ShowtimeHandler) GetShowtime(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	showtime, err := h.service.GetShowtime(c, id)
	if err != nil {
		h.handleShowtimeError(c, err, "GetShowtime")
		return
	}

	c.JSON(http.StatusOK, showtime)
}

func (h *ShowtimeHandler) DeactivateShowtime(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateShowtime(c, id); err != nil {
		h.handleShowtimeError(c, err, "DeactivateShowtime")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ShowtimeHandler) handleShowtimeError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrShowtimeNotFound):
		log.Warn("Showtime not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Showtime not found",
		})
	case errors.Is(err, apperrors.ErrMovieNotFound):
		log.Warn("Movie not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Movie not found",
		})
	case errors.Is(err, apperrors.ErrHallNotFound):
		log.Warn("Hall not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Hall not found",
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
