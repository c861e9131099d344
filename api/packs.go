package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/economy/packs"
)

type openPackRequest struct {
	PackType  models.PackType `json:"pack_type" binding:"required"`
	RequestID string          `json:"request_id"`
}

type openPackResponse struct {
	Cards    []cardResponse  `json:"cards"`
	XPSpent  int64           `json:"xp_spent"`
	PackType models.PackType `json:"pack_type"`
	EventID  int64           `json:"event_id"`
	Replayed bool            `json:"replayed"`
}

func (a *API) handleOpenPack(c *gin.Context) {
	var req openPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.RequestID != "" {
		if _, err := uuid.Parse(req.RequestID); err != nil {
			respondBadRequest(c, "request_id must be a UUID")
			return
		}
	}

	result, err := a.Packs.Open(c.Request.Context(), c.Param("userId"), req.PackType, req.RequestID)
	if err != nil {
		respondError(c, err)
		return
	}

	cards := make([]cardResponse, len(result.Cards))
	for i, card := range result.Cards {
		cards[i] = a.cardResponse(card)
	}
	c.JSON(http.StatusOK, openPackResponse{
		Cards:    cards,
		XPSpent:  result.XPSpent,
		PackType: result.Event.PackType,
		EventID:  result.Event.ID,
		Replayed: result.Replayed,
	})
}

func (a *API) handleCanAfford(c *gin.Context) {
	packType := models.PackType(c.Query("type"))
	if !packType.Valid() {
		respondBadRequest(c, "invalid pack type")
		return
	}

	affordable, err := a.Packs.CanAfford(c.Request.Context(), c.Param("userId"), packType)
	if err != nil {
		respondError(c, err)
		return
	}

	cost, err := packs.Cost(packType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pack_type": packType, "cost": cost, "affordable": affordable})
}

func (a *API) handlePackHistory(c *gin.Context) {
	events, err := a.PackEvents.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
