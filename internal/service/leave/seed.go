package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// BalanceSeederImpl creates a new user's ledger rows, one per category that
// applies to their role.
type BalanceSeederImpl struct {
	categories  leave.CategoryRepository
	balances    leave.BalanceRepository
	calculator  *DayCalculator
	expiryMonth time.Month
	expiryDay   int
}

func NewBalanceSeeder(categoryRepo leave.CategoryRepository, balanceRepo leave.BalanceRepository, calculator *DayCalculator, expiryMonth time.Month, expiryDay int) *BalanceSeederImpl {
	return &BalanceSeederImpl{
		categories:  categoryRepo,
		balances:    balanceRepo,
		calculator:  calculator,
		expiryMonth: expiryMonth,
		expiryDay:   expiryDay,
	}
}

// SeedBalances implements leave.BalanceSeeder.
func (s *BalanceSeederImpl) SeedBalances(ctx context.Context, u user.User) ([]leave.Balance, error) {
	categories, err := s.categories.ListApplicable(ctx, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave categories: %w", err)
	}

	today := s.calculator.Today()
	expired := time.Date(today.Year(), s.expiryMonth, s.expiryDay, 0, 0, 0, 0, s.calculator.Location())

	seeded := make([]leave.Balance, 0, len(categories))
	for _, category := range categories {
		if !category.AppliesTo(u.Role) {
			continue
		}
		balance, err := s.balances.Create(ctx, leave.Balance{
			UserID:         u.ID,
			CategoryID:     category.ID,
			TotalUsed:      decimal.Zero,
			TotalAvailable: category.TotalDays,
			ExpiredDate:    &expired,
		})
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, balance)
	}

	slog.Debug("leave balances seeded", "user_id", u.ID, "count", len(seeded))
	return seeded, nil
}
