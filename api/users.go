package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

type registerUserRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
	XP        int64  `json:"xp"`
}

func (a *API) handleRegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user := &models.User{
		AccountID: req.AccountID,
		Username:  req.Username,
		XP:        req.XP,
	}
	if err := a.Users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *API) handleGetUser(c *gin.Context) {
	user, err := a.Users.GetByAccountID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type grantXPRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// handleGrantXP credits XP earned elsewhere on the platform.
func (a *API) handleGrantXP(c *gin.Context) {
	var req grantXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	userID := c.Param("userId")
	if err := a.Users.GrantXP(c.Request.Context(), userID, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	xp, err := a.Users.GetXP(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": userID, "xp": xp})
}
