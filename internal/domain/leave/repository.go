package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// CategoryRepository - interface for leave_categories table
type CategoryRepository interface {
	// ResolveByName finds the category called name that applies to role.
	ResolveByName(ctx context.Context, name string, role user.Role) (Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	ListApplicable(ctx context.Context, role user.Role) ([]Category, error)
}

// BalanceRepository - interface for leave_balances table. Reserve and Release
// are single conditional updates and are safe under concurrent callers.
type BalanceRepository interface {
	Create(ctx context.Context, balance Balance) (Balance, error)
	GetByUserAndCategory(ctx context.Context, userID, categoryID string) (Balance, error)
	ListByUser(ctx context.Context, userID string) ([]Balance, error)
	Reserve(ctx context.Context, userID, categoryID string, days decimal.Decimal) error
	Release(ctx context.Context, userID, categoryID string, days decimal.Decimal) error
}

// RequestFilter narrows List. Nil fields are ignored; Limit 0 disables
// pagination.
type RequestFilter struct {
	RequestedUserID *string
	AssignedUserID  *string
	CategoryID      *string
	Status          *Status
	ExcludeStatus   *Status
	Page            int
	Limit           int
}

// RequestRepository - interface for leave_requests table. Mutations only
// touch rows that are still pending and not deleted and return
// ErrLeaveNotPending otherwise.
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, request Request) (Request, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Request, error)
	SoftDelete(ctx context.Context, id string) error
	HasOverlap(ctx context.Context, userID string, dateRange DateRange, excludeID *string) (bool, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
	ListApprovedBetween(ctx context.Context, from, to time.Time, assignedUserID *string) ([]Request, error)
}
