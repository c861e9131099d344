package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/decks"
	"github.com/projectklase/comunika-cards/cardengine/economy/packs"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError translates domain errors into HTTP semantics: rule
// violations are 422, missing things are 404, losing a race is 409,
// and transient failures are 503 with a Retry-After hint.
func respondError(c *gin.Context, err error) {
	var tooManyCopies decks.TooManyCopiesError
	var unknownPack packs.ErrUnknownPackType

	switch {
	case errors.Is(err, decks.ErrTooFewCards):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "too_few_cards"})
	case errors.Is(err, decks.ErrTooManyCards):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "too_many_cards"})
	case errors.As(err, &tooManyCopies):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "too_many_copies"})
	case errors.Is(err, repositories.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "insufficient_funds"})
	case errors.Is(err, repositories.ErrInsufficientQuantity):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "insufficient_quantity"})
	case errors.As(err, &unknownPack):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "unknown_pack_type"})

	case errors.Is(err, repositories.ErrAlreadyClaimedFree):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "free_pack_already_claimed"})
	case errors.Is(err, repositories.ErrDeckConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "deck_conflict"})
	case errors.Is(err, repositories.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "duplicate_request"})

	case errors.Is(err, repositories.ErrCardNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "card_not_found"})
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "user_not_found"})
	case errors.Is(err, repositories.ErrDeckNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "deck_not_found"})

	case repositories.Retryable(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "temporary conflict, retry the request", Code: "retryable"})

	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}
