package notification

import (
	"context"
)

// Dispatcher accepts notification events from the leave workflow. Notify
// never fails the caller; delivery problems are logged.
type Dispatcher interface {
	Notify(ctx context.Context, event Event)
}

// Service defines the notification service interface
type Service interface {
	Dispatcher

	GetNotifications(ctx context.Context, userID string, page, pageSize int) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	RegisterPushToken(ctx context.Context, userID string, req RegisterPushTokenRequest) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// RetryPendingDeliveries resends pushes that have not succeeded yet.
	RetryPendingDeliveries(ctx context.Context) error

	// Lifecycle
	Stop()
}
