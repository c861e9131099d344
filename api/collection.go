package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) handleGetCollection(c *gin.Context) {
	userID := c.Param("userId")
	owned, err := a.Collection.ListOwned(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := a.Collection.TotalCardCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":  owned,
		"unique": len(owned),
		"total":  total,
	})
}

func (a *API) handleGetProgress(c *gin.Context) {
	progress, err := a.Collection.Progress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

type ledgerRequest struct {
	CardID int64 `json:"card_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

func (a *API) handleCredit(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID := c.Param("userId")
	if err := a.Collection.Credit(c.Request.Context(), userID, req.CardID, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	quantity, err := a.Collection.QuantityOf(c.Request.Context(), userID, req.CardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"card_id": req.CardID, "quantity": quantity})
}

func (a *API) handleDebit(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID := c.Param("userId")
	if err := a.Collection.Debit(c.Request.Context(), userID, req.CardID, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	quantity, err := a.Collection.QuantityOf(c.Request.Context(), userID, req.CardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"card_id": req.CardID, "quantity": quantity})
}
