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

// PlayerInfo registers the player on first visit and returns the profile
// together with the daily bonus table. A referral that cannot be linked does
// not fail the request; the reason is returned as referral_error.
func (h *Handler) PlayerInfo(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	var referrerID int64
	if raw := c.Param("referral_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral_id"})
			return
		}
		referrerID = id
	}

	snap, err := h.Game.GetOrCreatePlayer(c.Request.Context(), tgID, c.Param("name"), referrerID)
	if snap == nil {
		writeError(c, err)
		return
	}

	resp := gin.H{
		"player_info": snap.Player,
		"bonus_info":  snap.BonusInfo,
		"created":     snap.Created,
	}
	if err != nil {
		if StatusFor(err) >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("referral link failed", "tg_id", tgID, "error", err)
		}
		resp["referral_error"] = domain.PublicMessage(err)
	}
	c.JSON(http.StatusOK, resp)
}

type tgIDRequest struct {
	TgID int64 `json:"tg_id" binding:"required"`
}

// DailyBonus applies the login streak reward for today.
func (h *Handler) DailyBonus(c *gin.Context) {
	var req tgIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
		return
	}

	res, err := h.Game.ClaimDailyLogin(c.Request.Context(), req.TgID)
	if err != nil {
		writeError(c, err)
		return
	}

	message := "daily bonus already claimed"
	if res.Applied {
		message = "daily bonus claimed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          message,
		"awarded":          res.Awarded,
		"consecutive_days": res.ConsecutiveDays,
		"player_coins":     res.Coins,
	})
}

type collectBonusesRequest struct {
	TgID   int64 `json:"tg_id" binding:"required"`
	Hour   bool  `json:"hour"`
	Second bool  `json:"second"`
}

// CollectBonuses claims the offline (hour) and/or per-second bonus.
func (h *Handler) CollectBonuses(c *gin.Context) {
	var req collectBonusesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id is required"})
		return
	}

	res, err := h.Game.ClaimBonus(c.Request.Context(), req.TgID, service.BonusRequest{
		Offline:   req.Hour,
		PerSecond: req.Second,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBonusNotReady) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "the time has not come yet"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tg_id":        res.TgID,
		"player_coins": res.Coins,
		"offline":      res.Offline,
		"per_second":   res.PerSecond,
		"message":      "bonuses collected",
	})
}
