package notification

import (
	"errors"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/apperror"
)

// Notification domain errors
var (
	ErrNotificationNotFound = apperror.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found")
	ErrPushTokenRequired    = apperror.Validation("PUSH_TOKEN_REQUIRED", "fcmToken is required")
	ErrQueueFull            = errors.New("notification queue is full")
	ErrDispatcherStopped    = errors.New("notification dispatcher is stopped")
)
