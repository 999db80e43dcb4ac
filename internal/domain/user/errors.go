package user

import "github.com/cmlabs-hris/hris-leave-go/internal/pkg/apperror"

var (
	ErrUserNotFound          = apperror.NotFound("USER_NOT_FOUND", "User not found")
	ErrApproverNotFound      = apperror.NotFound("APPROVER_NOT_FOUND", "Requester has no assigned approver")
	ErrReportToNotFound      = apperror.NotFound("REPORT_TO_NOT_FOUND", "reportTo user not found")
	ErrUserEmailExists       = apperror.StateConflict("USER_EMAIL_EXISTS", "User's email already exists")
	ErrInvalidApprover       = apperror.Validation("INVALID_APPROVER", "reportTo must be a manager or admin office")
	ErrInvalidRole           = apperror.Validation("INVALID_ROLE", "Invalid role")
	ErrInsufficientRole      = apperror.Permission("INSUFFICIENT_ROLE", "Insufficient permissions")
	ErrAdminOfficeRequired   = apperror.Permission("ADMIN_OFFICE_REQUIRED", "Admin office access required")
	ErrManagerAccessRequired = apperror.Permission("MANAGER_ACCESS_REQUIRED", "Manager access required")
)
