package repositories

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// Sentinels shared across the repository layer. The first group are
// user-facing business rules and must be surfaced verbatim; the second
// group are normal negative results.
var (
	ErrInsufficientFunds    = errors.New("insufficient XP balance")
	ErrInsufficientQuantity = errors.New("insufficient card quantity")
	ErrAlreadyClaimedFree   = errors.New("free pack already claimed")

	ErrCardNotFound = errors.New("card not found")
	ErrUserNotFound = errors.New("user not found")
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckConflict signals an optimistic concurrency failure on a deck
	// update; the caller may re-read and retry.
	ErrDeckConflict = errors.New("deck was modified concurrently")

	// ErrDuplicateRequest signals a pack-open request id that already
	// committed; the caller should replay the stored result.
	ErrDuplicateRequest = errors.New("duplicate pack request")
)

// Retryable reports whether an operation failed transiently and can be
// retried without duplicating side effects. User-rule violations are
// never retryable.
func Retryable(err error) bool {
	if errors.Is(err, ErrDeckConflict) {
		return true
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "40001", "40P01": // serialization failure, deadlock detected
			return true
		}
	}
	return false
}

// violatedConstraint returns the name of the violated unique constraint,
// or "" when err is not a unique violation.
func violatedConstraint(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
		return pgErr.Field('n')
	}
	return ""
}
