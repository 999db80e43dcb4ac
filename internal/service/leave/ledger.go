package leave

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Ledger applies day movements to leave balances. Callers run it inside the
// transition's transaction so ledger and request rows commit together.
type Ledger struct {
	balances leave.BalanceRepository
}

func NewLedger(balances leave.BalanceRepository) *Ledger {
	return &Ledger{balances: balances}
}

func (l *Ledger) Reserve(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	if !days.IsPositive() {
		return leave.ErrInvalidDays
	}
	return l.balances.Reserve(ctx, userID, categoryID, days)
}

func (l *Ledger) Release(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	if !days.IsPositive() {
		return leave.ErrInvalidDays
	}
	return l.balances.Release(ctx, userID, categoryID, days)
}

// Adjust moves delta days within one category.
func (l *Ledger) Adjust(ctx context.Context, userID, categoryID string, delta decimal.Decimal) error {
	switch {
	case delta.IsPositive():
		return l.balances.Reserve(ctx, userID, categoryID, delta)
	case delta.IsNegative():
		return l.balances.Release(ctx, userID, categoryID, delta.Neg())
	}
	return nil
}

// Move returns oldDays to fromCategory and takes newDays from toCategory.
func (l *Ledger) Move(ctx context.Context, userID, fromCategoryID string, oldDays decimal.Decimal, toCategoryID string, newDays decimal.Decimal) error {
	if err := l.Release(ctx, userID, fromCategoryID, oldDays); err != nil {
		return fmt.Errorf("release previous category: %w", err)
	}
	return l.Reserve(ctx, userID, toCategoryID, newDays)
}
