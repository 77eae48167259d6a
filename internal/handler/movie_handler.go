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

type MovieHandler struct {
	service service.MovieService
}

func NewMovieHandler(service service.MovieService) *MovieHandler {
	return &MovieHandler{service: service}
}

func (h *MovieHandler) RegisterRoutes(r *gin.Engine, identity, admin gin.HandlerFunc) {
	router := r.Group("/api/v1", identity)
	{
		router.GET("movies", h.ListMovies)
		router.GET("movies/:id", h.GetMovie)
	}

	adminRouter := r.Group("/api/v1", identity, admin)
	{
		adminRouter.POST("movies", h.CreateMovie)
		adminRouter.PUT("movies/:id", h.UpdateMovie)
		adminRouter.DELETE("movies/:id", h.DeleteMovie)
	}
}

func (h *MovieHandler) CreateMovie(c *gin.Context) {
	var req model.CreateMovieRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateMovie(c, &req)
	if err != nil {
		h.handleMovieError(c, err, "CreateMovie")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *MovieHandler) ListMovies(c *gin.Context) {
	var query model.MovieListQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	movies, total, err := h.service.ListMovies(c, query)
	if err != nil {
		h.handleMovieError(c, err, "ListMovies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movies":    movies,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	})
}

func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	movie, err := h.service.GetMovie(c, id)
	if err != nil {
		h.handleMovieError(c, err, "GetMovie")
		return
	}

	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	var params model.UpdateMovieParams
	if err := BindJson(c, &params); err != nil {
		return
	}

	updated, err := h.service.UpdateMovie(c, id, &params)
	if err != nil {
		h.handleMovieError(c, err, "UpdateMovie")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	id, ok := ParamInt(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMovie(c, id); err != nil {
		h.handleMovieError(c, err, "DeleteMovie")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *MovieHandler) handleMovieError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrMovieNotFound):
		log.Warn("Movie not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Movie not found",
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
