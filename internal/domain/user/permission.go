package user

type Permission string

const (
	PermissionLeaveViewOwn  Permission = "leave.view_own"
	PermissionLeaveCreate   Permission = "leave.create"
	PermissionLeaveViewTeam Permission = "leave.view_team"
	PermissionLeaveApprove  Permission = "leave.approve"
	PermissionLeaveReport   Permission = "leave.report"

	PermissionNotificationViewOwn Permission = "notification.view_own"

	PermissionEmployeeOnboard Permission = "employee.onboard"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdminOffice: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
		PermissionLeaveReport,
		PermissionNotificationViewOwn,
		PermissionEmployeeOnboard,
	},
	RoleManager: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
		PermissionLeaveReport,
		PermissionNotificationViewOwn,
	},
	RoleEmployee: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionNotificationViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

// DeniedError is the error reported when a role lacks permission.
func DeniedError(permission Permission) error {
	switch permission {
	case PermissionLeaveViewTeam, PermissionLeaveApprove, PermissionLeaveReport:
		return ErrManagerAccessRequired
	case PermissionEmployeeOnboard:
		return ErrAdminOfficeRequired
	default:
		return ErrInsufficientRole
	}
}
