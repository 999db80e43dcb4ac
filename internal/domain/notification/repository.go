package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	GetByUserID(ctx context.Context, userID string, page, pageSize int) ([]*Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

// PushRepository stores device tokens and the delivery log.
type PushRepository interface {
	UpsertToken(ctx context.Context, userID, token string) (*PushToken, error)
	ListTokens(ctx context.Context, userID string) ([]*PushToken, error)
	DeleteToken(ctx context.Context, token string) error

	CreateDeliveries(ctx context.Context, deliveries []*PushDelivery) error
	// MarkDelivery stores the outcome of an attempt and releases the claim.
	MarkDelivery(ctx context.Context, delivery *PushDelivery) error
	// ListRetryable returns unclaimed pending or failed deliveries below
	// maxAttempts, oldest first.
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]*PushDelivery, error)
	ClaimDeliveries(ctx context.Context, ids []string, until time.Time) error
}
