package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveSubmit  NotificationType = "leave_submit"
	TypeLeaveApprove NotificationType = "leave_approve"
	TypeLeaveReject  NotificationType = "leave_reject"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveSubmit,
		TypeLeaveApprove,
		TypeLeaveReject,
	}
}

// Fixed user-facing messages per type.
const (
	MessageLeaveSubmit  = "New leave request has been submitted to you."
	MessageLeaveApprove = "Your leave request has been approved."
	MessageLeaveReject  = "Your leave request has been rejected."
)

// Notification represents a notification entity
type Notification struct {
	ID             string
	TargetUserID   string
	LeaveRequestID *string
	Type           NotificationType
	Message        string
	IsRead         bool
	CreatedAt      time.Time
}

// PushToken is a device registration token owned by a user.
type PushToken struct {
	ID         string
	UserID     string
	Token      string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// PushDelivery tracks one push attempt chain of a notification to one token.
// While ClaimedUntil is in the future a sender owns the row and the retry job
// skips it.
type PushDelivery struct {
	ID                string
	NotificationID    string
	UserID            string
	Token             string
	Status            DeliveryStatus
	Attempts          int
	LastError         *string
	ProviderMessageID *string
	ClaimedUntil      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Join
	LeaveRequestID *string
	Type           NotificationType
}

// Event is what the leave workflow hands to the dispatcher after commit.
type Event struct {
	TargetUserID   string
	LeaveRequestID string
	Type           NotificationType
	Message        string
}
