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

type HallHandler struct {
	service service.HallService
}

func NewHallHandler(service service.HallService) *HallHandler {
	return &HallHandler{service: service}
}

func (h *HallHandler) RegisterRoutes(r *gin.Engine, identity, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", identity)
	{
		router.GET("halls", h.ListHalls)
		router.GET("halls/:id", h.GetHall)
	}

	adminRouter := r.Group("/api/v1", identity, admin)
	{
		adminRouter.POST("halls", h.CreateHall)
		adminRouter.PUT("halls/:id", h.UpdateHall)
		adminRouter.DELETE("halls/:id", h.DeleteHall)
	}
}

func (h *HallHandler) CreateHall(c *gin.Context) {
	var req model.CreateHallRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateHall(c, &req)
	if err != nil {
		h.handleHallError(c, err, "CreateHall")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *HallHandler) ListHalls(c *gin.Context) {
	halls, err := h.service.ListHalls(c)
	if err != nil {
		h.handleHallError(c, err, "ListHalls")
		return
	}

	c.JSON(http.StatusOK, halls)
}

func (h *HallHandler) GetHall(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	hall, err := h.service.GetHall(c, id)
	if err != nil {
		h.handleHallError(c, err, "GetHall")
		return
	}

	c.JSON(http.StatusOK, hall)
}

func (h *HallHandler) UpdateHall(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	var params model.UpdateHallParams
	if err := BindJson(c, &params); err != nil {
		return
	}

	updated, err := h.service.UpdateHall(c, id, &params)
	if err != nil {
		h.handleHallError(c, err, "UpdateHall")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *HallHandler) DeleteHall(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteHall(c, id); err != nil {
		h.handleHallError(c, err, "DeleteHall")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HallHandler) handleHallError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
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
