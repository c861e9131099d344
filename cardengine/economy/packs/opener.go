package packs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/economy/utils"
	"github.com/uptrace/bun"
)

// Result is the outcome of a pack opening. Replayed is set when the
// request id matched a previously committed opening and the stored
// outcome was returned instead of drawing again.
type Result struct {
	Cards    []*models.Card
	XPSpent  int64
	Event    *models.PackEvent
	Replayed bool
}

// Opener runs the pack purchase flow. Every opening is a single
// serializable transaction: affordability check, XP debit, draw,
// ledger credit and audit record commit together or not at all.
type Opener struct {
	users      repositories.UserRepository
	cards      repositories.CardRepository
	userCards  repositories.UserCardRepository
	packEvents repositories.PackEventRepository
	tx         utils.TxRunner
	drawer     *Drawer
}

func NewOpener(
	users repositories.UserRepository,
	cards repositories.CardRepository,
	userCards repositories.UserCardRepository,
	packEvents repositories.PackEventRepository,
	tx utils.TxRunner,
	drawer *Drawer,
) *Opener {
	return &Opener{
		users:      users,
		cards:      cards,
		userCards:  userCards,
		packEvents: packEvents,
		tx:         tx,
		drawer:     drawer,
	}
}

// CanAfford reports whether the user could open the pack right now.
// For FREE packs that means no prior FREE opening; for paid packs an
// XP balance at or above the cost. The answer is advisory, Open
// re-validates under the transaction.
func (o *Opener) CanAfford(ctx context.Context, userID string, packType models.PackType) (bool, error) {
	cost, err := Cost(packType)
	if err != nil {
		return false, err
	}

	if packType == models.PackTypeFree {
		if _, err := o.users.GetByAccountID(ctx, userID); err != nil {
			return false, err
		}
		claimed, err := o.packEvents.HasFreeOpen(ctx, userID)
		if err != nil {
			return false, err
		}
		return !claimed, nil
	}

	xp, err := o.users.GetXP(ctx, userID)
	if err != nil {
		return false, err
	}
	return xp >= cost, nil
}

// Open opens a pack for the user. A non-empty requestID makes the call
// idempotent: retrying with the same id returns the stored result.
func (o *Opener) Open(ctx context.Context, userID string, packType models.PackType, requestID string) (*Result, error) {
	cost, err := Cost(packType)
	if err != nil {
		return nil, err
	}

	if requestID != "" {
		if result, err := o.replay(ctx, requestID); err != nil || result != nil {
			return result, err
		}
	}

	if _, err := o.users.GetByAccountID(ctx, userID); err != nil {
		return nil, err
	}

	var (
		drawn []*models.Card
		event *models.PackEvent
	)
	err = o.tx.WithTransaction(ctx, utils.SerializableTransactionOptions(), func(ctx context.Context, tx bun.IDB) error {
		if err := o.users.SpendXPTx(ctx, tx, userID, cost); err != nil {
			return err
		}

		pool, err := o.cards.GetAllActive(ctx)
		if err != nil {
			return err
		}

		drawn, err = o.drawer.Draw(pool, packType)
		if err != nil {
			return err
		}

		// Duplicates in the draw become a single multi-copy credit.
		counts := make(map[int64]int64, len(drawn))
		order := make([]int64, 0, len(drawn))
		for _, card := range drawn {
			if counts[card.ID] == 0 {
				order = append(order, card.ID)
			}
			counts[card.ID]++
		}
		for _, cardID := range order {
			if err := o.userCards.AddTx(ctx, tx, userID, cardID, counts[cardID]); err != nil {
				return err
			}
		}

		cardIDs := make([]int64, len(drawn))
		for i, card := range drawn {
			cardIDs[i] = card.ID
		}
		event = &models.PackEvent{
			UserID:    userID,
			PackType:  packType,
			XPSpent:   cost,
			CardIDs:   cardIDs,
			RequestID: requestID,
		}
		return o.packEvents.InsertTx(ctx, tx, event)
	})
	if err != nil {
		// A concurrent retry may have won the request_id index race;
		// its committed outcome is this call's outcome.
		if errors.Is(err, repositories.ErrDuplicateRequest) && requestID != "" {
			if result, replayErr := o.replay(ctx, requestID); replayErr == nil && result != nil {
				return result, nil
			}
		}
		return nil, err
	}

	slog.Debug("pack opened",
		slog.String("type", "economy"),
		slog.String("user_id", userID),
		slog.String("pack_type", string(packType)),
		slog.Int64("xp_spent", cost),
		slog.Int("cards", len(drawn)),
	)

	return &Result{Cards: drawn, XPSpent: cost, Event: event}, nil
}

// replay resolves a request id to its stored outcome, or (nil, nil)
// when the id is unseen.
func (o *Opener) replay(ctx context.Context, requestID string) (*Result, error) {
	event, err := o.packEvents.GetByRequestID(ctx, requestID)
	if err != nil || event == nil {
		return nil, err
	}

	cards, err := o.cards.GetByIDs(ctx, event.CardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve replayed pack cards: %w", err)
	}

	byID := make(map[int64]*models.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}
	ordered := make([]*models.Card, 0, len(event.CardIDs))
	for _, id := range event.CardIDs {
		if card, ok := byID[id]; ok {
			ordered = append(ordered, card)
		}
	}

	return &Result{Cards: ordered, XPSpent: event.XPSpent, Event: event, Replayed: true}, nil
}
