package leave

import (
	"errors"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.NotFound("LEAVE_REQUEST_NOT_FOUND", "Leave request not found")
	ErrCategoryNotFound     = apperror.NotFound("LEAVE_CATEGORY_NOT_FOUND", "Category not found")
	ErrBalanceNotFound      = apperror.NotFound("LEAVE_BALANCE_NOT_FOUND", "Leave balance not found")

	ErrNotParticipant = apperror.Permission("LEAVE_PERMISSION_REQUIRED", "Permission Required")
	ErrNotApprover    = apperror.Permission("LEAVE_APPROVER_REQUIRED", "Only the assigned approver or admin office can process this request")
	ErrAccessDenied   = apperror.Permission("LEAVE_ACCESS_DENIED", "Access denied")

	ErrLeaveNotPending = apperror.StateConflict("LEAVE_NOT_PENDING", "Only pending request can be modified")

	ErrInvalidDateRange   = apperror.Validation("INVALID_DATE_RANGE", "FromDate cannot be later than toDate")
	ErrBackdateNotAllowed = apperror.Validation("BACKDATE_NOT_ALLOWED", "Leave cannot be applied for previous time")
	ErrFilterNotAllowed   = apperror.Validation("FILTER_NOT_ALLOWED", "Query is not allowed")
	ErrInvalidYear        = apperror.Validation("INVALID_YEAR", "Year must be a four digit number")
	ErrInvalidDays        = apperror.Validation("INVALID_DAYS", "Leave days must be positive")

	ErrInsufficientBalance = apperror.New(apperror.KindInsufficientBalance, "INSUFFICIENT_BALANCE", "Insufficient leave balance")
	ErrOverlappingLeave    = apperror.New(apperror.KindOverlap, "LEAVE_OVERLAP", "Leave cannot be applied twice for the same day")
)

// ErrLedgerUnderflow means a release would drive totalUsed below zero. It is
// an invariant violation, not a business rule, and surfaces as a fatal error.
var ErrLedgerUnderflow = errors.New("leave balance underflow")
