package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type recordBattleRequest struct {
	OpponentID string `json:"opponent_id" binding:"required"`
	DeckID     *int64 `json:"deck_id"`
	Won        bool   `json:"won"`
}

func (a *API) handleRecordBattle(c *gin.Context) {
	var req recordBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	record, err := a.Battles.Record(c.Request.Context(), c.Param("userId"), req.OpponentID, req.DeckID, req.Won)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (a *API) handleBattleStats(c *gin.Context) {
	stats, err := a.Battles.Stats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleLeaderboard serves JSON standings, or a rendered PNG when
// ?format=image is requested and the image service is available.
func (a *API) handleLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondBadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	standings, err := a.Battles.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "image" {
		if a.LeaderboardImages == nil {
			respondBadRequest(c, "image rendering is not enabled")
			return
		}
		image, err := a.LeaderboardImages.GenerateImage(c.Request.Context(), standings)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", image)
		return
	}

	c.JSON(http.StatusOK, gin.H{"standings": standings, "count": len(standings)})
}
