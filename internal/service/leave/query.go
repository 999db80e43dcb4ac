package leave

import (
	"context"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.IsDeleted {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	if !request.CanView(actor) {
		return leave.LeaveRequestResponse{}, leave.ErrAccessDenied
	}
	return leave.ToRequestResponse(request), nil
}

// ListMyLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListMyLeaveRequests(ctx context.Context, actor user.Actor, filter leave.MyLeaveRequestFilter) (leave.MyLeaveRequestsResponse, error) {
	base := leave.RequestFilter{
		RequestedUserID: &actor.UserID,
		Status:          filter.Status,
	}
	if filter.Category != nil {
		category, err := l.categories.ResolveByName(ctx, *filter.Category, actor.Role)
		if err != nil {
			return leave.MyLeaveRequestsResponse{}, err
		}
		base.CategoryID = &category.ID
	}

	resp := leave.MyLeaveRequestsResponse{
		CurrentPageLeavesList: []leave.LeaveRequestResponse{},
	}

	if filter.Paginate {
		paged := base
		paged.Page, paged.Limit = filter.Page, filter.Limit
		requests, count, err := l.requests.List(ctx, paged)
		if err != nil {
			return leave.MyLeaveRequestsResponse{}, err
		}
		resp.CurrentPageLeavesList = leave.ToRequestResponses(requests)
		resp.Count = count
		resp.TotalPages = int(math.Ceil(float64(count) / float64(filter.Limit)))
	} else {
		count, err := l.count(ctx, base)
		if err != nil {
			return leave.MyLeaveRequestsResponse{}, err
		}
		resp.Count = count
	}

	pending := leave.StatusPending
	pendingCount, err := l.count(ctx, leave.RequestFilter{RequestedUserID: &actor.UserID, Status: &pending})
	if err != nil {
		return leave.MyLeaveRequestsResponse{}, err
	}
	resp.PendingCount = pendingCount

	rejected := leave.StatusRejected
	full := base
	full.ExcludeStatus = &rejected
	requests, _, err := l.requests.List(ctx, full)
	if err != nil {
		return leave.MyLeaveRequestsResponse{}, err
	}
	resp.FullLeavesList = leave.ToRequestResponses(requests)

	return resp, nil
}

func (l *LeaveServiceImpl) count(ctx context.Context, filter leave.RequestFilter) (int64, error) {
	filter.Page, filter.Limit = 1, 1
	_, total, err := l.requests.List(ctx, filter)
	return total, err
}

// ListTeamLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListTeamLeaveRequests(ctx context.Context, actor user.Actor) ([]leave.LeaveRequestResponse, error) {
	rejected := leave.StatusRejected
	filter := leave.RequestFilter{ExcludeStatus: &rejected}

	if !user.HasPermission(actor.Role, user.PermissionLeaveViewTeam) {
		return nil, user.DeniedError(user.PermissionLeaveViewTeam)
	}
	if !actor.IsAdminOffice() {
		filter.AssignedUserID = &actor.UserID
	}

	requests, _, err := l.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return leave.ToRequestResponses(requests), nil
}

// ListPendingLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListPendingLeaveRequests(ctx context.Context, actor user.Actor) (leave.PendingLeaveRequestsResponse, error) {
	pending := leave.StatusPending
	requests, total, err := l.requests.List(ctx, leave.RequestFilter{AssignedUserID: &actor.UserID, Status: &pending})
	if err != nil {
		return leave.PendingLeaveRequestsResponse{}, err
	}
	return leave.PendingLeaveRequestsResponse{
		PendingLeave:      leave.ToRequestResponses(requests),
		TotalPendingCount: total,
	}, nil
}

// GetMyBalance implements leave.LeaveService.
func (l *LeaveServiceImpl) GetMyBalance(ctx context.Context, actor user.Actor) (leave.BalanceSummaryResponse, error) {
	balances, err := l.balances.ListByUser(ctx, actor.UserID)
	if err != nil {
		return leave.BalanceSummaryResponse{}, err
	}

	resp := leave.BalanceSummaryResponse{LeaveBalance: make([]leave.BalanceResponse, 0, len(balances))}
	used, had := decimal.Zero, decimal.Zero
	for _, b := range balances {
		item := leave.BalanceResponse{
			ID:             b.ID,
			CategoryID:     b.CategoryID,
			TotalUsed:      b.TotalUsed.InexactFloat64(),
			TotalAvailable: b.TotalAvailable.InexactFloat64(),
			TotalRemaining: b.Remaining().InexactFloat64(),
		}
		if b.Category != nil {
			item.CategoryName = b.Category.Name
			item.DisplayOrder = b.Category.DisplayOrder
		}
		if b.ExpiredDate != nil {
			expired := b.ExpiredDate.Format("2006-01-02")
			item.ExpiredDate = &expired
		}
		resp.LeaveBalance = append(resp.LeaveBalance, item)
		used = used.Add(b.TotalUsed)
		had = had.Add(b.TotalAvailable)
	}

	resp.TotalUsedSum = used.InexactFloat64()
	resp.TotalHadSum = had.InexactFloat64()
	resp.TotalRemainingSum = had.Sub(used).InexactFloat64()
	return resp, nil
}

// GetLeaveByMonth implements leave.LeaveService. Each approved request
// starting in year is spread over the calendar days it covers; days past
// the end of year are not counted.
func (l *LeaveServiceImpl) GetLeaveByMonth(ctx context.Context, actor user.Actor, year int) (leave.LeaveByMonthResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionLeaveReport) {
		return leave.LeaveByMonthResponse{}, user.DeniedError(user.PermissionLeaveReport)
	}
	var assigned *string
	if !actor.IsAdminOffice() {
		assigned = &actor.UserID
	}

	loc := l.calculator.Location()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, loc)

	requests, err := l.requests.ListApprovedBetween(ctx, start, end, assigned)
	if err != nil {
		return leave.LeaveByMonthResponse{}, err
	}

	var months [12]decimal.Decimal
	total := decimal.Zero
	for _, r := range requests {
		from, to := l.calculator.Normalize(r.FromDate), l.calculator.Normalize(r.ToDate)
		for d := from; !d.After(to) && d.Year() == year; d = d.AddDate(0, 0, 1) {
			w := l.calculator.DayWeight(r, d)
			months[d.Month()-1] = months[d.Month()-1].Add(w)
			total = total.Add(w)
		}
	}

	resp := leave.LeaveByMonthResponse{
		TotalLeaveByMonth:  make([]leave.MonthlyLeave, 12),
		TotalApprovedLeave: total.InexactFloat64(),
	}
	for i, label := range monthLabels {
		resp.TotalLeaveByMonth[i] = leave.MonthlyLeave{Label: label, Data: months[i].InexactFloat64()}
	}
	return resp, nil
}
