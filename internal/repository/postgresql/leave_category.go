package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveCategoryRepositoryImpl struct {
	db *database.DB
}

func NewLeaveCategoryRepository(db *database.DB) leave.CategoryRepository {
	return &leaveCategoryRepositoryImpl{db: db}
}

const leaveCategoryColumns = `id, name, target_type, target_role, total_days, display_order`

func scanCategory(row pgx.Row) (leave.Category, error) {
	var c leave.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.TargetType,
		&c.TargetRole,
		&c.TotalDays,
		&c.DisplayOrder,
	)
	return c, err
}

// ResolveByName implements leave.CategoryRepository. A role-scoped category
// wins over an All category with the same name.
func (r *leaveCategoryRepositoryImpl) ResolveByName(ctx context.Context, name string, role user.Role) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveCategoryColumns + `
		FROM leave_categories
		WHERE LOWER(name) = LOWER($1)
		  AND (target_type = 'All' OR (target_type = 'Role' AND target_role = $2))
		ORDER BY (target_type = 'Role') DESC
		LIMIT 1
	`

	c, err := scanCategory(q.QueryRow(ctx, query, name, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Category{}, leave.ErrCategoryNotFound
		}
		return leave.Category{}, fmt.Errorf("failed to resolve leave category: %w", err)
	}
	return c, nil
}

// GetByID implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCategory(q.QueryRow(ctx, `SELECT `+leaveCategoryColumns+` FROM leave_categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Category{}, leave.ErrCategoryNotFound
		}
		return leave.Category{}, fmt.Errorf("failed to get leave category: %w", err)
	}
	return c, nil
}

// ListApplicable implements leave.CategoryRepository.
func (r *leaveCategoryRepositoryImpl) ListApplicable(ctx context.Context, role user.Role) ([]leave.Category, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveCategoryColumns + `
		FROM leave_categories
		WHERE target_type = 'All' OR (target_type = 'Role' AND target_role = $1)
		ORDER BY display_order, name
	`

	rows, err := q.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave categories: %w", err)
	}
	defer rows.Close()

	var categories []leave.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
