package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// Create implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (user_id, leave_category_id, total_used, total_available, expired_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, leave_category_id, total_used, total_available, expired_date, created_at, updated_at
	`

	var created leave.Balance
	err := q.QueryRow(ctx, query,
		balance.UserID,
		balance.CategoryID,
		balance.TotalUsed,
		balance.TotalAvailable,
		balance.ExpiredDate,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.CategoryID,
		&created.TotalUsed,
		&created.TotalAvailable,
		&created.ExpiredDate,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.Balance{}, fmt.Errorf("leave balance already exists for user %s category %s: %w", balance.UserID, balance.CategoryID, err)
		}
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return created, nil
}

// GetByUserAndCategory implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByUserAndCategory(ctx context.Context, userID, categoryID string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, leave_category_id, total_used, total_available, expired_date, created_at, updated_at
		FROM leave_balances
		WHERE user_id = $1 AND leave_category_id = $2
	`

	var b leave.Balance
	err := q.QueryRow(ctx, query, userID, categoryID).Scan(
		&b.ID,
		&b.UserID,
		&b.CategoryID,
		&b.TotalUsed,
		&b.TotalAvailable,
		&b.ExpiredDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// ListByUser implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.user_id, lb.leave_category_id, lb.total_used, lb.total_available, lb.expired_date,
			   lb.created_at, lb.updated_at,
			   lc.id, lc.name, lc.target_type, lc.target_role, lc.total_days, lc.display_order
		FROM leave_balances lb
		INNER JOIN leave_categories lc ON lc.id = lb.leave_category_id
		WHERE lb.user_id = $1
		ORDER BY lc.display_order, lc.name
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.Balance
	for rows.Next() {
		var b leave.Balance
		var c leave.Category
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.CategoryID,
			&b.TotalUsed,
			&b.TotalAvailable,
			&b.ExpiredDate,
			&b.CreatedAt,
			&b.UpdatedAt,
			&c.ID,
			&c.Name,
			&c.TargetType,
			&c.TargetRole,
			&c.TotalDays,
			&c.DisplayOrder,
		)
		if err != nil {
			return nil, err
		}
		b.Category = &c
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Reserve implements leave.BalanceRepository. The remaining-days predicate
// is evaluated by the UPDATE itself, so concurrent reserves serialize on the
// row and can never push total_used past total_available.
func (r *leaveBalanceRepositoryImpl) Reserve(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET total_used = total_used + $3, updated_at = NOW()
		WHERE user_id = $1 AND leave_category_id = $2 AND total_available - total_used >= $3
	`

	tag, err := q.Exec(ctx, query, userID, categoryID, days)
	if err != nil {
		return fmt.Errorf("failed to reserve leave balance: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return leave.ErrBalanceNotFound
	}
	return leave.ErrInsufficientBalance
}

// Release implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Release(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET total_used = total_used - $3, updated_at = NOW()
		WHERE user_id = $1 AND leave_category_id = $2 AND total_used >= $3
	`

	tag, err := q.Exec(ctx, query, userID, categoryID, days)
	if err != nil {
		return fmt.Errorf("failed to release leave balance: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return leave.ErrBalanceNotFound
	}
	return fmt.Errorf("release %s days for user %s category %s: %w", days, userID, categoryID, leave.ErrLedgerUnderflow)
}

func (r *leaveBalanceRepositoryImpl) exists(ctx context.Context, userID, categoryID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leave_balances WHERE user_id = $1 AND leave_category_id = $2)`,
		userID, categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check leave balance: %w", err)
	}
	return exists, nil
}
