package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/decks"
)

type createDeckRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	CardIDs     []int64 `json:"card_ids" binding:"required"`
}

func (a *API) handleCreateDeck(c *gin.Context) {
	var req createDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	deck, err := a.Decks.Create(c.Request.Context(), c.Param("userId"), req.Name, req.Description, req.CardIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deck)
}

func (a *API) handleListDecks(c *gin.Context) {
	listed, err := a.Decks.List(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"decks": listed, "count": len(listed)})
}

func (a *API) handleGetDeck(c *gin.Context) {
	deckID, ok := parseDeckID(c)
	if !ok {
		return
	}
	deck, err := a.Decks.Get(c.Request.Context(), c.Param("userId"), deckID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

type updateDeckRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Favorite    *bool   `json:"favorite"`
	CardIDs     []int64 `json:"card_ids"`
}

func (a *API) handleUpdateDeck(c *gin.Context) {
	deckID, ok := parseDeckID(c)
	if !ok {
		return
	}

	var req updateDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	deck, err := a.Decks.Update(c.Request.Context(), c.Param("userId"), deckID, decks.DeckPatch{
		Name:        req.Name,
		Description: req.Description,
		Favorite:    req.Favorite,
		CardIDs:     req.CardIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

func (a *API) handleDeleteDeck(c *gin.Context) {
	deckID, ok := parseDeckID(c)
	if !ok {
		return
	}
	if err := a.Decks.Delete(c.Request.Context(), c.Param("userId"), deckID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDeckID(c *gin.Context) (int64, bool) {
	deckID, err := strconv.ParseInt(c.Param("deckId"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid deck id")
		return 0, false
	}
	return deckID, true
}
