package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

func (a *API) handleHealth(c *gin.Context) {
	if a.Health != nil {
		if err := a.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type cardResponse struct {
	*models.Card
	ImageURL string `json:"image_url,omitempty"`
}

func (a *API) cardResponse(card *models.Card) cardResponse {
	resp := cardResponse{Card: card, ImageURL: card.ImageURL}
	if resp.ImageURL == "" && a.Spaces != nil {
		resp.ImageURL = a.Spaces.CardImageURL(card)
	}
	return resp
}

func (a *API) handleListCards(c *gin.Context) {
	var (
		cards []*models.Card
		err   error
	)
	if query := c.Query("search"); query != "" {
		cards, err = a.Cards.SearchByName(c.Request.Context(), query)
	} else {
		cards, err = a.Cards.GetAllActive(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]cardResponse, len(cards))
	for i, card := range cards {
		out[i] = a.cardResponse(card)
	}
	c.JSON(http.StatusOK, gin.H{"cards": out, "count": len(out)})
}

func (a *API) handleGetCard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("cardId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid card id")
		return
	}

	card, err := a.Cards.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.cardResponse(card))
}

type createCardRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Category    models.Category `json:"category" binding:"required"`
	Rarity      models.Rarity   `json:"rarity" binding:"required"`
	CardType    models.CardType `json:"card_type" binding:"required"`
	Atk         int             `json:"atk"`
	Def         int             `json:"def"`
	Effects     []models.Effect `json:"effects"`
	ImageURL    string          `json:"image_url"`
}

func (a *API) handleCreateCard(c *gin.Context) {
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if !req.Rarity.Valid() {
		respondBadRequest(c, "invalid rarity")
		return
	}
	for _, effect := range req.Effects {
		if !effect.Type.Valid() {
			respondBadRequest(c, "invalid effect type: "+string(effect.Type))
			return
		}
	}

	card := &models.Card{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Rarity:      req.Rarity,
		CardType:    req.CardType,
		Atk:         req.Atk,
		Def:         req.Def,
		Effects:     req.Effects,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if err := a.Cards.Create(c.Request.Context(), card); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a.cardResponse(card))
}

// handleRetireCard deactivates a card; it stays owned but leaves the
// draw pool and the completion total.
func (a *API) handleRetireCard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("cardId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid card id")
		return
	}
	if err := a.Cards.Retire(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
