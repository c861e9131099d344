package migration

import (
	"strings"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

// convertRarity maps the legacy numeric level onto the rarity enum.
// Out-of-range levels land on COMMON rather than failing the import.
func convertRarity(level int) models.Rarity {
	switch level {
	case 2:
		return models.RarityUncommon
	case 3:
		return models.RarityRare
	case 4:
		return models.RarityEpic
	case 5:
		return models.RarityLegendary
	default:
		return models.RarityCommon
	}
}

func convertCardType(raw string) models.CardType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SPELL":
		return models.CardTypeSpell
	case "TRAP":
		return models.CardTypeTrap
	default:
		return models.CardTypeMonster
	}
}

func convertCategory(raw string) models.Category {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SCIENCE":
		return models.CategoryScience
	case "HISTORY":
		return models.CategoryHistory
	case "LANGUAGE", "PORTUGUESE", "ENGLISH":
		return models.CategoryLanguage
	case "ARTS":
		return models.CategoryArts
	case "SPORTS":
		return models.CategorySports
	default:
		return models.CategoryMath
	}
}

func convertEffects(mc MongoCard) []models.Effect {
	if len(mc.Effects) == 0 {
		return nil
	}
	effects := make([]models.Effect, 0, len(mc.Effects))
	for _, e := range mc.Effects {
		effectType := models.EffectType(strings.ToUpper(strings.TrimSpace(e.Type)))
		if !effectType.Valid() {
			continue
		}
		effects = append(effects, models.Effect{
			Type:        effectType,
			Amount:      e.Amount,
			Description: e.Description,
		})
	}
	return effects
}

func convertCard(mc MongoCard) *models.Card {
	now := time.Now()
	return &models.Card{
		ID:          mc.ID,
		Name:        strings.TrimSpace(mc.Name),
		Description: strings.TrimSpace(mc.Description),
		Category:    convertCategory(mc.Category),
		Rarity:      convertRarity(mc.Level),
		CardType:    convertCardType(mc.Type),
		Atk:         mc.Atk,
		Def:         mc.Def,
		Effects:     convertEffects(mc),
		ImageURL:    mc.ImageURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func convertUser(mu MongoUser) *models.User {
	now := time.Now()
	return &models.User{
		AccountID: mu.AccountID,
		Username:  mu.Username,
		XP:        mu.XP,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func convertUserCard(mc MongoUserCard) *models.UserCard {
	now := time.Now()
	obtained := now
	if mc.Obtained != nil {
		obtained = *mc.Obtained
	}
	amount := int64(mc.Amount)
	if amount < 1 {
		amount = 1
	}
	return &models.UserCard{
		UserID:    mc.AccountID,
		CardID:    *mc.CardID,
		Amount:    amount,
		Obtained:  obtained,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
