package handlers

import (
	"errors"
	"net/http"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"

	"github.com/gin-gonic/gin"
)

// ListDogs returns the player's field and the next dog for sale.
func (h *Handler) ListDogs(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	view, err := h.Game.ListDogs(c.Request.Context(), tgID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateDog buys a dog at the virtual dog's price.
func (h *Handler) CreateDog(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	res, err := h.Game.PurchaseDog(c.Request.Context(), tgID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type breedRequest struct {
	DogPairs [][]int64 `json:"dog_pairs"`
}

// BreedDogs merges pairs of equal-level dogs. When a pair in the middle of
// the batch fails, the pairs before it are kept and reported as committed.
func (h *Handler) BreedDogs(c *gin.Context) {
	tgID, ok := tgIDParam(c)
	if !ok {
		return
	}

	var req breedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dog_pairs must be a list of id pairs"})
		return
	}

	res, err := h.Game.BreedDogs(c.Request.Context(), tgID, req.DogPairs)
	if err != nil {
		var be *game.BreedError
		if errors.As(err, &be) {
			committed := be.Committed
			if res != nil {
				committed = res.Upgraded
			}
			if committed == nil {
				committed = []*domain.Dog{}
			}
			c.JSON(StatusFor(err), gin.H{
				"error":       domain.PublicMessage(err),
				"failed_pair": be.Pair,
				"committed":   committed,
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
