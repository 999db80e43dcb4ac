package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaveFixture struct {
	manager  user.User
	employee user.User
	category leave.Category
}

func seedLeaveFixture(t *testing.T, ctx context.Context, available int64) leaveFixture {
	t.Helper()
	users := postgresql.NewUserRepository(testSetup.DB)
	categories := postgresql.NewLeaveCategoryRepository(testSetup.DB)
	balances := postgresql.NewLeaveBalanceRepository(testSetup.DB)

	manager, err := users.Create(ctx, user.User{FullName: "Manager", Email: "manager@example.com", Role: user.RoleManager, Status: user.StatusActive})
	require.NoError(t, err)
	employee, err := users.Create(ctx, user.User{FullName: "Employee", Email: "employee@example.com", Role: user.RoleEmployee, ReportTo: &manager.ID, Status: user.StatusActive})
	require.NoError(t, err)

	category, err := categories.ResolveByName(ctx, "annual leave", user.RoleEmployee)
	require.NoError(t, err)

	_, err = balances.Create(ctx, leave.Balance{
		UserID:         employee.ID,
		CategoryID:     category.ID,
		TotalUsed:      decimal.Zero,
		TotalAvailable: decimal.NewFromInt(available),
	})
	require.NoError(t, err)

	return leaveFixture{manager: manager, employee: employee, category: category}
}

func TestLeaveCategoryRepository_ResolveByName(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveCategoryRepository(testSetup.DB)

	// Act
	annual, err := repo.ResolveByName(ctx, "Annual Leave", user.RoleEmployee)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, leave.TargetTypeAll, annual.TargetType)

	_, err = repo.ResolveByName(ctx, "Management Leave", user.RoleEmployee)
	assert.ErrorIs(t, err, leave.ErrCategoryNotFound)

	mgmt, err := repo.ResolveByName(ctx, "Management Leave", user.RoleManager)
	require.NoError(t, err)
	require.NotNil(t, mgmt.TargetRole)
	assert.Equal(t, user.RoleManager, *mgmt.TargetRole)
}

func TestLeaveBalanceRepository_ReserveRelease(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	fx := seedLeaveFixture(t, ctx, 3)
	repo := postgresql.NewLeaveBalanceRepository(testSetup.DB)

	// Act & Assert
	require.NoError(t, repo.Reserve(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromFloat(2.5)))
	assert.ErrorIs(t, repo.Reserve(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromInt(1)), leave.ErrInsufficientBalance)
	require.NoError(t, repo.Reserve(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromFloat(0.5)))

	b, err := repo.GetByUserAndCategory(ctx, fx.employee.ID, fx.category.ID)
	require.NoError(t, err)
	assert.True(t, b.TotalUsed.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.Remaining().IsZero())

	require.NoError(t, repo.Release(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromInt(3)))
	assert.ErrorIs(t, repo.Release(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromInt(1)), leave.ErrLedgerUnderflow)

	other, err := postgresql.NewLeaveCategoryRepository(testSetup.DB).ResolveByName(ctx, "Sick Leave", user.RoleEmployee)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Reserve(ctx, fx.employee.ID, other.ID, decimal.NewFromInt(1)), leave.ErrBalanceNotFound)
}

func TestLeaveBalanceRepository_Reserve_Concurrent(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	fx := seedLeaveFixture(t, ctx, 5)
	repo := postgresql.NewLeaveBalanceRepository(testSetup.DB)

	// Act: 20 callers race for 5 days, one day each.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(ctx, fx.employee.ID, fx.category.ID, decimal.NewFromInt(1)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 5, succeeded)
	b, err := repo.GetByUserAndCategory(ctx, fx.employee.ID, fx.category.ID)
	require.NoError(t, err)
	assert.True(t, b.TotalUsed.Equal(b.TotalAvailable))
}

func TestLeaveRequestRepository_OverlapAndGuards(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	fx := seedLeaveFixture(t, ctx, 10)
	repo := postgresql.NewLeaveRequestRepository(testSetup.DB)

	from := time.Date(2030, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	created, err := repo.Create(ctx, leave.Request{
		RequestedUserID: fx.employee.ID,
		AssignedUserID:  fx.manager.ID,
		CategoryID:      fx.category.ID,
		FromDate:        from,
		ToDate:          to,
		FromType:        leave.DayTypeFull,
		ToType:          leave.DayTypeFull,
		TotalDays:       decimal.NewFromInt(3),
		Reason:          "holiday",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, created.Status)
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, fx.category.Name, *created.CategoryName)

	overlap, err := repo.HasOverlap(ctx, fx.employee.ID, leave.DateRange{From: to, To: to.AddDate(0, 0, 1)}, nil)
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, fx.employee.ID, leave.DateRange{From: from, To: to}, &created.ID)
	require.NoError(t, err)
	assert.False(t, overlap, "own request is excluded")

	overlap, err = repo.HasOverlap(ctx, fx.employee.ID, leave.DateRange{From: to.AddDate(0, 0, 1), To: to.AddDate(0, 0, 3)}, nil)
	require.NoError(t, err)
	assert.False(t, overlap)

	rejected, err := repo.UpdateStatus(ctx, created.ID, leave.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)

	_, err = repo.UpdateStatus(ctx, created.ID, leave.StatusApproved)
	assert.ErrorIs(t, err, leave.ErrLeaveNotPending)
	assert.ErrorIs(t, repo.SoftDelete(ctx, created.ID), leave.ErrLeaveNotPending)

	overlap, err = repo.HasOverlap(ctx, fx.employee.ID, leave.DateRange{From: from, To: to}, nil)
	require.NoError(t, err)
	assert.False(t, overlap, "rejected requests never count")
}

func TestLeaveRequestRepository_List(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	fx := seedLeaveFixture(t, ctx, 10)
	repo := postgresql.NewLeaveRequestRepository(testSetup.DB)

	base := time.Date(2030, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d := base.AddDate(0, 0, i*2)
		_, err := repo.Create(ctx, leave.Request{
			RequestedUserID: fx.employee.ID,
			AssignedUserID:  fx.manager.ID,
			CategoryID:      fx.category.ID,
			FromDate:        d,
			ToDate:          d,
			FromType:        leave.DayTypeFull,
			ToType:          leave.DayTypeFull,
			TotalDays:       decimal.NewFromInt(1),
			Reason:          "errand",
		})
		require.NoError(t, err)
	}

	// Act
	pending := leave.StatusPending
	page, total, err := repo.List(ctx, leave.RequestFilter{AssignedUserID: &fx.manager.ID, Status: &pending, Page: 2, Limit: 2})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, base.Day(), page[0].FromDate.Day(), "ordered by from_date desc")
}
