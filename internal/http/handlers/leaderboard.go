package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const leaderboardSize = 100

// GetLeaderboard returns the top players by coins
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit := leaderboardSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, leaderboardSize)
	}

	top, err := h.Game.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": top})
}

// GetPlayerRank returns the player's place in the leaderboard
func (h *Handler) GetPlayerRank(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	e, err := h.Game.PlayerRank(c.Request.Context(), tgID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank":  e.Rank,
		"coins": e.Coins,
	})
}
