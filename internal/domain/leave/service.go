package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
)

type LeaveService interface {
	// Lifecycle
	CreateLeaveRequest(ctx context.Context, actor user.Actor, req LeaveRequestRequest) (LeaveRequestResponse, error)
	UpdateLeaveRequest(ctx context.Context, actor user.Actor, requestID string, req LeaveRequestRequest) (LeaveRequestResponse, error)
	DeleteLeaveRequest(ctx context.Context, actor user.Actor, requestID string) error
	ApproveLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)

	// Reads
	GetLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (LeaveRequestResponse, error)
	ListMyLeaveRequests(ctx context.Context, actor user.Actor, filter MyLeaveRequestFilter) (MyLeaveRequestsResponse, error)
	ListTeamLeaveRequests(ctx context.Context, actor user.Actor) ([]LeaveRequestResponse, error)
	ListPendingLeaveRequests(ctx context.Context, actor user.Actor) (PendingLeaveRequestsResponse, error)
	GetMyBalance(ctx context.Context, actor user.Actor) (BalanceSummaryResponse, error)
	GetLeaveByMonth(ctx context.Context, actor user.Actor, year int) (LeaveByMonthResponse, error)
}

// BalanceSeeder creates the ledger rows of a newly onboarded user.
type BalanceSeeder interface {
	SeedBalances(ctx context.Context, u user.User) ([]Balance, error)
}
