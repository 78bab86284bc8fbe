package handlers

import (
	"net/http"
	"strconv"

	"dogs_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	defaultTransactionsLimit = 50
	maxTransactionsLimit     = 500
)

// Referrals lists the friends a player has brought into the game.
func (h *Handler) Referrals(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	friends, err := h.Game.ListReferrals(c.Request.Context(), tgID)
	if err != nil {
		writeError(c, err)
		return
	}
	if friends == nil {
		friends = []domain.Friend{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(friends),
		"friends": friends,
	})
}

// Transactions returns the player's coin ledger, newest first.
func (h *Handler) Transactions(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	limit := defaultTransactionsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxTransactionsLimit)
	}

	txs, err := h.Game.ListTransactions(c.Request.Context(), tgID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
