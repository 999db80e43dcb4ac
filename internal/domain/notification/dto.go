package notification

import (
	"strings"
	"time"
)

// ============= Request DTOs =============

type RegisterPushTokenRequest struct {
	FCMToken string `json:"fcmToken"`
}

func (r *RegisterPushTokenRequest) Validate() error {
	r.FCMToken = strings.TrimSpace(r.FCMToken)
	if r.FCMToken == "" {
		return ErrPushTokenRequired
	}
	return nil
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID             string           `json:"id"`
	LeaveRequestID *string          `json:"leaveRequestId,omitempty"`
	Type           NotificationType `json:"type"`
	Message        string           `json:"message"`
	IsRead         bool             `json:"isRead"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		LeaveRequestID: n.LeaveRequestID,
		Type:           n.Type,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
	}
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unreadCount"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"pageSize"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkAllAsReadResponse struct {
	Updated int64 `json:"updated"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
