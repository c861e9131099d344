package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/projectklase/comunika-cards/cardengine/battle"
	"github.com/projectklase/comunika-cards/cardengine/collection"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories/repotest"
	"github.com/projectklase/comunika-cards/cardengine/decks"
	"github.com/projectklase/comunika-cards/cardengine/economy/packs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiFixture struct {
	router *gin.Engine

	users      *repotest.UserRepo
	cards      *repotest.CardRepo
	userCards  *repotest.UserCardRepo
	packEvents *repotest.PackEventRepo
	decks      *repotest.DeckRepo
	battles    *repotest.BattleRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		users:      repotest.NewUserRepo(),
		cards:      repotest.NewCardRepo(),
		userCards:  repotest.NewUserCardRepo(),
		packEvents: repotest.NewPackEventRepo(),
		decks:      repotest.NewDeckRepo(),
		battles:    repotest.NewBattleRepo(),
	}

	for id := int64(1); id <= 20; id++ {
		f.cards.Cards = append(f.cards.Cards, &models.Card{
			ID:       id,
			Name:     fmt.Sprintf("Card %d", id),
			Category: models.CategoryMath,
			Rarity:   models.Rarities[(id-1)%5],
			CardType: models.CardTypeMonster,
			Active:   true,
		})
	}

	api := &API{
		Cards:      f.cards,
		Users:      f.users,
		PackEvents: f.packEvents,
		Collection: collection.NewService(f.cards, f.userCards, repotest.NewTxRunner(f.userCards)),
		Decks:      decks.NewService(f.decks, f.cards, f.userCards),
		Packs: packs.NewOpener(f.users, f.cards, f.userCards, f.packEvents,
			repotest.NewTxRunner(f.users, f.userCards, f.packEvents),
			packs.NewDrawer(rand.NewSource(7))),
		Battles: battle.NewService(f.battles, f.decks),
	}
	f.router = api.Router()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	api := &API{Health: func(context.Context) error { return errors.New("db down") }}
	rec = httptest.NewRecorder()
	api.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterAndGetUser(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users", gin.H{
		"account_id": "student-1",
		"username":   "ada",
		"xp":         500,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/student-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user_not_found", decodeBody(t, rec)["code"])
}

func TestGrantXP(t *testing.T) {
	f := newAPIFixture(t)
	f.users.XP["student-1"] = 100

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/xp/grant", gin.H{"amount": 250})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(350), decodeBody(t, rec)["xp"])

	rec = f.do(t, http.MethodPost, "/api/v1/users/student-1/xp/grant", gin.H{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenPack(t *testing.T) {
	f := newAPIFixture(t)
	f.users.XP["student-1"] = 1000

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/packs/open", gin.H{
		"pack_type": "BASIC",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(100), body["xp_spent"])
	assert.Len(t, body["cards"], 3)
	assert.EqualValues(t, 900, f.users.XP["student-1"])
}

func TestOpenPackInsufficientFunds(t *testing.T) {
	f := newAPIFixture(t)
	f.users.XP["student-1"] = 50

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/packs/open", gin.H{
		"pack_type": "LEGENDARY",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_funds", decodeBody(t, rec)["code"])
}

func TestOpenFreePackTwice(t *testing.T) {
	f := newAPIFixture(t)
	f.users.XP["student-1"] = 0

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/packs/open", gin.H{"pack_type": "FREE"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/users/student-1/packs/open", gin.H{"pack_type": "FREE"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "free_pack_already_claimed", decodeBody(t, rec)["code"])
}

func TestOpenPackRejectsMalformedRequestID(t *testing.T) {
	f := newAPIFixture(t)
	f.users.XP["student-1"] = 1000

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/packs/open", gin.H{
		"pack_type":  "BASIC",
		"request_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectionRoundTrip(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/collection/credit", gin.H{
		"card_id": 1,
		"amount":  3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decodeBody(t, rec)["quantity"])

	rec = f.do(t, http.MethodPost, "/api/v1/users/student-1/collection/debit", gin.H{
		"card_id": 1,
		"amount":  2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["quantity"])

	rec = f.do(t, http.MethodGet, "/api/v1/users/student-1/collection/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["owned"])
	assert.Equal(t, float64(20), body["total"])
	assert.Equal(t, float64(5), body["percentage"])
}

func TestDebitBelowZeroIsRejected(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/collection/debit", gin.H{
		"card_id": 1,
		"amount":  1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_quantity", decodeBody(t, rec)["code"])
}

func TestCreateDeckValidation(t *testing.T) {
	f := newAPIFixture(t)
	for id := int64(1); id <= 10; id++ {
		require.NoError(t, f.userCards.AddTx(context.Background(), nil, "student-1", id, 1))
	}

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/decks", gin.H{
		"name":     "too small",
		"card_ids": []int64{1, 2, 3},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "too_few_cards", decodeBody(t, rec)["code"])

	rec = f.do(t, http.MethodPost, "/api/v1/users/student-1/decks", gin.H{
		"name":     "starter",
		"card_ids": []int64{1, 2, 3, 4, 5},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/users/student-1/decks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestDeckCopyLimitViaHTTP(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.userCards.AddTx(context.Background(), nil, "student-1", 1, 3))
	for id := int64(2); id <= 5; id++ {
		require.NoError(t, f.userCards.AddTx(context.Background(), nil, "student-1", id, 1))
	}

	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/decks", gin.H{
		"name":     "stacked",
		"card_ids": []int64{1, 1, 1, 2, 3},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "too_many_copies", decodeBody(t, rec)["code"])
}

func TestRecordBattleAndStats(t *testing.T) {
	f := newAPIFixture(t)

	for _, won := range []bool{true, true, false} {
		rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/battles", gin.H{
			"opponent_id": "student-2",
			"won":         won,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/v1/users/student-1/battles/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["wins"])
	assert.Equal(t, float64(1), body["losses"])

	rec = f.do(t, http.MethodGet, "/api/v1/battles/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestCardPayloadUsesSnakeCase(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cards", gin.H{
		"name":      "Chain Rule",
		"category":  "MATH",
		"rarity":    "RARE",
		"card_type": "SPELL",
		"image_url": "https://cdn.example.com/chain_rule.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	for _, key := range []string{"id", "name", "card_type", "image_url", "created_at"} {
		assert.Contains(t, body, key)
	}
	for _, key := range []string{"ID", "Name", "CardType", "ImageURL", "CreatedAt"} {
		assert.NotContains(t, body, key)
	}
	assert.Equal(t, 1, bytes.Count(rec.Body.Bytes(), []byte(`"image_url"`)))
}

func TestLeaderboardImageUnavailable(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/users/student-1/battles", gin.H{
		"opponent_id": "student-2",
		"won":         true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/battles/leaderboard?format=image", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
