package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

var (
	_ leave.LeaveService  = (*LeaveServiceImpl)(nil)
	_ leave.BalanceSeeder = (*BalanceSeederImpl)(nil)
)

type LeaveServiceImpl struct {
	tx         database.Transactor
	categories leave.CategoryRepository
	balances   leave.BalanceRepository
	requests   leave.RequestRepository
	users      user.UserRepository
	ledger     *Ledger
	calculator *DayCalculator
	dispatcher notification.Dispatcher
}

func NewLeaveService(
	tx database.Transactor,
	categoryRepo leave.CategoryRepository,
	balanceRepo leave.BalanceRepository,
	requestRepo leave.RequestRepository,
	userRepo user.UserRepository,
	calculator *DayCalculator,
	dispatcher notification.Dispatcher,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:         tx,
		categories: categoryRepo,
		balances:   balanceRepo,
		requests:   requestRepo,
		users:      userRepo,
		ledger:     NewLedger(balanceRepo),
		calculator: calculator,
		dispatcher: dispatcher,
	}
}

// draft is a validated range with its day count.
type draft struct {
	category leave.Category
	from     time.Time
	to       time.Time
	days     decimal.Decimal
}

// prepare resolves the category for role and runs the date checks shared by
// create and update.
func (l *LeaveServiceImpl) prepare(ctx context.Context, input leave.LeaveInput, role user.Role) (draft, error) {
	category, err := l.categories.ResolveByName(ctx, input.CategoryName, role)
	if err != nil {
		return draft{}, err
	}

	from, to := l.calculator.Normalize(input.FromDate), l.calculator.Normalize(input.ToDate)
	days, err := l.calculator.Count(from, to, input.FromType, input.ToType)
	if err != nil {
		return draft{}, err
	}
	if err := l.calculator.CheckBackdate(from); err != nil {
		return draft{}, err
	}

	return draft{category: category, from: from, to: to, days: days}, nil
}

func (l *LeaveServiceImpl) checkOverlap(ctx context.Context, userID string, from, to time.Time, excludeID *string) error {
	overlaps, err := l.requests.HasOverlap(ctx, userID, leave.DateRange{From: from, To: to}, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return leave.ErrOverlappingLeave
	}
	return nil
}

// lockPending loads the request for update and applies the existence,
// permission and status guards in that order.
func (l *LeaveServiceImpl) lockPending(ctx context.Context, requestID string, allowed func(leave.Request) bool, denied error) (leave.Request, error) {
	request, err := l.requests.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		return leave.Request{}, err
	}
	if !allowed(request) {
		return leave.Request{}, denied
	}
	if !request.IsPending() {
		return leave.Request{}, leave.ErrLeaveNotPending
	}
	return request, nil
}

// CreateLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, actor user.Actor, req leave.LeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	input, err := req.Validate(l.calculator.Location())
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var created leave.Request
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Serializes concurrent creates of one requester so overlap checks see each other.
		if err := l.users.LockByID(ctx, actor.UserID); err != nil {
			return err
		}
		requester, err := l.users.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if requester.ReportTo == nil || *requester.ReportTo == "" {
			return user.ErrApproverNotFound
		}

		d, err := l.prepare(ctx, input, requester.Role)
		if err != nil {
			return err
		}
		if err := l.checkOverlap(ctx, requester.ID, d.from, d.to, nil); err != nil {
			return err
		}
		if err := l.ledger.Reserve(ctx, requester.ID, d.category.ID, d.days); err != nil {
			return err
		}

		created, err = l.requests.Create(ctx, leave.Request{
			RequestedUserID: requester.ID,
			AssignedUserID:  *requester.ReportTo,
			CategoryID:      d.category.ID,
			FromDate:        d.from,
			ToDate:          d.to,
			FromType:        input.FromType,
			ToType:          input.ToType,
			TotalDays:       d.days,
			Reason:          input.Reason,
			Document:        input.Document,
			Status:          leave.StatusPending,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request created", "leave_request_id", created.ID, "user_id", created.RequestedUserID, "total_days", created.TotalDays.String())
	l.dispatcher.Notify(ctx, notification.Event{
		TargetUserID:   created.AssignedUserID,
		LeaveRequestID: created.ID,
		Type:           notification.TypeLeaveSubmit,
		Message:        notification.MessageLeaveSubmit,
	})

	return leave.ToRequestResponse(created), nil
}

// UpdateLeaveRequest implements leave.LeaveService. Day count, backdating and
// overlap are evaluated against the requester, whoever the actor is.
func (l *LeaveServiceImpl) UpdateLeaveRequest(ctx context.Context, actor user.Actor, requestID string, req leave.LeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	input, err := req.Validate(l.calculator.Location())
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var updated leave.Request
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.lockPending(ctx, requestID, func(r leave.Request) bool { return r.IsParticipant(actor) }, leave.ErrNotParticipant)
		if err != nil {
			return err
		}
		// Same lock as create, so the overlap check sees the requester's concurrent creates.
		if err := l.users.LockByID(ctx, existing.RequestedUserID); err != nil {
			return err
		}

		requester, err := l.users.GetByID(ctx, existing.RequestedUserID)
		if err != nil {
			return err
		}

		d, err := l.prepare(ctx, input, requester.Role)
		if err != nil {
			return err
		}
		if err := l.checkOverlap(ctx, requester.ID, d.from, d.to, &existing.ID); err != nil {
			return err
		}

		if d.category.ID == existing.CategoryID {
			err = l.ledger.Adjust(ctx, requester.ID, d.category.ID, d.days.Sub(existing.TotalDays))
		} else {
			err = l.ledger.Move(ctx, requester.ID, existing.CategoryID, existing.TotalDays, d.category.ID, d.days)
		}
		if err != nil {
			return err
		}

		existing.CategoryID = d.category.ID
		existing.FromDate = d.from
		existing.ToDate = d.to
		existing.FromType = input.FromType
		existing.ToType = input.ToType
		existing.TotalDays = d.days
		existing.Reason = input.Reason
		existing.Document = input.Document

		updated, err = l.requests.Update(ctx, existing)
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request updated", "leave_request_id", updated.ID, "actor_id", actor.UserID, "total_days", updated.TotalDays.String())
	return leave.ToRequestResponse(updated), nil
}

// DeleteLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) DeleteLeaveRequest(ctx context.Context, actor user.Actor, requestID string) error {
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.lockPending(ctx, requestID, func(r leave.Request) bool { return r.IsParticipant(actor) }, leave.ErrNotParticipant)
		if err != nil {
			return err
		}
		if err := l.requests.SoftDelete(ctx, existing.ID); err != nil {
			return err
		}
		return l.ledger.Release(ctx, existing.RequestedUserID, existing.CategoryID, existing.TotalDays)
	})
	if err != nil {
		return err
	}

	slog.Info("leave request deleted", "leave_request_id", requestID, "actor_id", actor.UserID)
	return nil
}

// ApproveLeaveRequest implements leave.LeaveService. Days were reserved at
// create time, so the ledger is untouched.
func (l *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	var approved leave.Request
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.lockPending(ctx, requestID, func(r leave.Request) bool { return r.CanDecide(actor) }, leave.ErrNotApprover)
		if err != nil {
			return err
		}
		approved, err = l.requests.UpdateStatus(ctx, existing.ID, leave.StatusApproved)
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request approved", "leave_request_id", approved.ID, "actor_id", actor.UserID)
	l.dispatcher.Notify(ctx, notification.Event{
		TargetUserID:   approved.RequestedUserID,
		LeaveRequestID: approved.ID,
		Type:           notification.TypeLeaveApprove,
		Message:        notification.MessageLeaveApprove,
	})

	return leave.ToRequestResponse(approved), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	var rejected leave.Request
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := l.lockPending(ctx, requestID, func(r leave.Request) bool { return r.CanDecide(actor) }, leave.ErrNotApprover)
		if err != nil {
			return err
		}
		rejected, err = l.requests.UpdateStatus(ctx, existing.ID, leave.StatusRejected)
		if err != nil {
			return err
		}
		return l.ledger.Release(ctx, existing.RequestedUserID, existing.CategoryID, existing.TotalDays)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("leave request rejected", "leave_request_id", rejected.ID, "actor_id", actor.UserID)
	l.dispatcher.Notify(ctx, notification.Event{
		TargetUserID:   rejected.RequestedUserID,
		LeaveRequestID: rejected.ID,
		Type:           notification.TypeLeaveReject,
		Message:        notification.MessageLeaveReject,
	})

	return leave.ToRequestResponse(rejected), nil
}
