package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/logger"
	"dogs_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Game *service.GameService
}

func NewHandler(game *service.GameService) *Handler {
	return &Handler{Game: game}
}

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable
	case domain.RuleViolation(err) != nil:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "error", err)
	}
	c.JSON(status, gin.H{"error": domain.PublicMessage(err)})
}

// tgIDParam reads the :tg_id path parameter, answering 400 when it is not a
// positive integer.
func tgIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("tg_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tg_id"})
		return 0, false
	}
	return id, true
}
