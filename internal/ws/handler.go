package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades /ws/dogs/:tg_id. The player must exist; the first frame
// on the socket is the current field.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		tgID, err := strconv.ParseInt(c.Param("tg_id"), 10, 64)
		if err != nil || tgID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tg_id"})
			return
		}

		view, err := hub.svc.ListDogs(c.Request.Context(), tgID)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, domain.ErrPlayerNotFound):
				status = http.StatusNotFound
			case domain.IsTransient(err):
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"error": domain.PublicMessage(err)})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
			return
		}

		initial := dogsMessage(view)
		NewClient(tgID, conn, hub).Run(context.WithoutCancel(c.Request.Context()), &initial)
	}
}
