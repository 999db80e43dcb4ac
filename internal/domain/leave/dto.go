package leave

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// LeaveRequestRequest is the body of both create and update. Type is the
// legacy single-type field and applies to both boundaries when FromType and
// ToType are omitted.
type LeaveRequestRequest struct {
	CategoryName string  `json:"categoryName" validate:"required,max=255"`
	FromDate     string  `json:"fromDate" validate:"required"`
	ToDate       string  `json:"toDate" validate:"required"`
	FromType     string  `json:"fromType,omitempty"`
	ToType       string  `json:"toType,omitempty"`
	Type         string  `json:"type,omitempty"`
	Reason       string  `json:"reason" validate:"required,max=1000"`
	Document     *string `json:"document,omitempty" validate:"omitempty,url"`
}

// LeaveInput is a validated LeaveRequestRequest.
type LeaveInput struct {
	CategoryName string
	FromDate     time.Time
	ToDate       time.Time
	FromType     DayType
	ToType       DayType
	Reason       string
	Document     *string
}

// Validate checks the request shape and resolves dates in loc and day types.
func (r *LeaveRequestRequest) Validate(loc *time.Location) (LeaveInput, error) {
	if err := validator.Struct(r); err != nil {
		return LeaveInput{}, err
	}

	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "Reason is required"})
	}

	fromDate, ok := validator.ParseDate(r.FromDate, loc)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "fromDate", Message: "fromDate must be a date (YYYY-MM-DD)"})
	}
	toDate, ok := validator.ParseDate(r.ToDate, loc)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "toDate", Message: "toDate must be a date (YYYY-MM-DD)"})
	}

	fromRaw, toRaw := r.FromType, r.ToType
	if fromRaw == "" {
		fromRaw = r.Type
	}
	if toRaw == "" {
		toRaw = r.Type
	}
	if fromRaw == "" {
		fromRaw = string(DayTypeFull)
	}
	if toRaw == "" {
		toRaw = string(DayTypeFull)
	}
	fromType, ok := ParseDayType(fromRaw)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "fromType", Message: "fromType must be one of [full half_morning half_afternoon]"})
	}
	toType, ok := ParseDayType(toRaw)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "toType", Message: "toType must be one of [full half_morning half_afternoon]"})
	}

	if len(errs) > 0 {
		return LeaveInput{}, errs
	}

	return LeaveInput{
		CategoryName: r.CategoryName,
		FromDate:     fromDate,
		ToDate:       toDate,
		FromType:     fromType,
		ToType:       toType,
		Reason:       r.Reason,
		Document:     r.Document,
	}, nil
}

// MyLeaveRequestFilter is the query of GET /leaves/me.
type MyLeaveRequestFilter struct {
	Category *string
	Status   *Status
	Page     int
	Limit    int
	Paginate bool
}

var allowedMyFilterKeys = map[string]bool{"category": true, "status": true, "page": true, "limit": true}

// ParseMyLeaveRequestFilter rejects unknown query keys. Pagination applies
// only when both page and limit are present.
func ParseMyLeaveRequestFilter(q url.Values) (MyLeaveRequestFilter, error) {
	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !allowedMyFilterKeys[key] {
			return MyLeaveRequestFilter{}, apperror.WithMessage(ErrFilterNotAllowed, fmt.Sprintf("Query %s is not allowed", key))
		}
	}

	var f MyLeaveRequestFilter
	if c := q.Get("category"); c != "" {
		f.Category = &c
	}
	if s := q.Get("status"); s != "" {
		status, ok := ParseStatus(s)
		if !ok {
			return MyLeaveRequestFilter{}, validator.ValidationErrors{{Field: "status", Message: "status must be one of [pending approved rejected]"}}
		}
		f.Status = &status
	}

	if q.Get("page") != "" && q.Get("limit") != "" {
		f.Paginate = true
		f.Page = atoiOr(q.Get("page"), 1)
		f.Limit = atoiOr(q.Get("limit"), 5)
	}
	return f, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ParseYear validates the {year} path segment.
func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1000 || year > 9999 {
		return 0, ErrInvalidYear
	}
	return year, nil
}

type LeaveRequestResponse struct {
	ID                string    `json:"id"`
	RequestedUserID   string    `json:"requestedUser"`
	RequestedUserName *string   `json:"requestedUserName,omitempty"`
	AssignedUserID    string    `json:"assignedUser"`
	AssignedUserName  *string   `json:"assignedUserName,omitempty"`
	CategoryID        string    `json:"category"`
	CategoryName      *string   `json:"categoryName,omitempty"`
	FromDate          string    `json:"fromDate"`
	ToDate            string    `json:"toDate"`
	FromType          DayType   `json:"fromType"`
	ToType            DayType   `json:"toType"`
	TotalDays         float64   `json:"totalDays"`
	Reason            string    `json:"reason"`
	Document          *string   `json:"document,omitempty"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func ToRequestResponse(r Request) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:                r.ID,
		RequestedUserID:   r.RequestedUserID,
		RequestedUserName: r.RequestedUserName,
		AssignedUserID:    r.AssignedUserID,
		AssignedUserName:  r.AssignedUserName,
		CategoryID:        r.CategoryID,
		CategoryName:      r.CategoryName,
		FromDate:          r.FromDate.Format(dateLayout),
		ToDate:            r.ToDate.Format(dateLayout),
		FromType:          r.FromType,
		ToType:            r.ToType,
		TotalDays:         r.TotalDays.InexactFloat64(),
		Reason:            r.Reason,
		Document:          r.Document,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func ToRequestResponses(requests []Request) []LeaveRequestResponse {
	out := make([]LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, ToRequestResponse(r))
	}
	return out
}

type MyLeaveRequestsResponse struct {
	FullLeavesList        []LeaveRequestResponse `json:"fullLeavesList"`
	CurrentPageLeavesList []LeaveRequestResponse `json:"currentPageLeavesList"`
	TotalPages            int                    `json:"totalPages"`
	Count                 int64                  `json:"count"`
	PendingCount          int64                  `json:"pendingCount"`
}

type PendingLeaveRequestsResponse struct {
	PendingLeave      []LeaveRequestResponse `json:"pendingLeave"`
	TotalPendingCount int64                  `json:"totalPendingCount"`
}

type BalanceResponse struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"leaveCategory"`
	CategoryName   string  `json:"leaveCategoryName"`
	DisplayOrder   int     `json:"displayOrder"`
	TotalUsed      float64 `json:"totalUsed"`
	TotalAvailable float64 `json:"totalAvailable"`
	TotalRemaining float64 `json:"totalRemaining"`
	ExpiredDate    *string `json:"expiredDate,omitempty"`
}

type BalanceSummaryResponse struct {
	LeaveBalance      []BalanceResponse `json:"leaveBalance"`
	TotalUsedSum      float64           `json:"totalUsedSum"`
	TotalHadSum       float64           `json:"totalHadSum"`
	TotalRemainingSum float64           `json:"totalRemainingSum"`
}

type MonthlyLeave struct {
	Label string  `json:"label"`
	Data  float64 `json:"data"`
}

type LeaveByMonthResponse struct {
	TotalLeaveByMonth  []MonthlyLeave `json:"totalLeaveByMonth"`
	TotalApprovedLeave float64        `json:"totalApprovedLeave"`
}
