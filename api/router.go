package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/battle"
	"github.com/projectklase/comunika-cards/cardengine/collection"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/decks"
	"github.com/projectklase/comunika-cards/cardengine/economy/packs"
	"github.com/projectklase/comunika-cards/cardengine/services"
)

// API wires the HTTP surface to the domain services. LeaderboardImages
// and Spaces are optional; their endpoints degrade gracefully when nil.
type API struct {
	Cards      repositories.CardRepository
	Users      repositories.UserRepository
	PackEvents repositories.PackEventRepository

	Collection *collection.Service
	Decks      *decks.Service
	Packs      *packs.Opener
	Battles    *battle.Service

	LeaderboardImages *battle.LeaderboardImageService
	Spaces            *services.SpacesService

	Health func(context.Context) error
}

func (a *API) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	router.GET("/health", a.handleHealth)

	v1 := router.Group("/api/v1")
	{
		cards := v1.Group("/cards")
		{
			cards.GET("", a.handleListCards)
			cards.POST("", a.handleCreateCard)
			cards.GET("/:cardId", a.handleGetCard)
			cards.DELETE("/:cardId", a.handleRetireCard)
		}

		users := v1.Group("/users")
		{
			users.POST("", a.handleRegisterUser)
			users.GET("/:userId", a.handleGetUser)
			users.POST("/:userId/xp/grant", a.handleGrantXP)

			users.GET("/:userId/collection", a.handleGetCollection)
			users.GET("/:userId/collection/progress", a.handleGetProgress)
			users.POST("/:userId/collection/credit", a.handleCredit)
			users.POST("/:userId/collection/debit", a.handleDebit)

			users.GET("/:userId/packs", a.handlePackHistory)
			users.GET("/:userId/packs/affordable", a.handleCanAfford)
			users.POST("/:userId/packs/open", a.handleOpenPack)

			users.GET("/:userId/decks", a.handleListDecks)
			users.POST("/:userId/decks", a.handleCreateDeck)
			users.GET("/:userId/decks/:deckId", a.handleGetDeck)
			users.PATCH("/:userId/decks/:deckId", a.handleUpdateDeck)
			users.DELETE("/:userId/decks/:deckId", a.handleDeleteDeck)

			users.POST("/:userId/battles", a.handleRecordBattle)
			users.GET("/:userId/battles/stats", a.handleBattleStats)
		}

		v1.GET("/battles/leaderboard", a.handleLeaderboard)
	}

	return router
}
