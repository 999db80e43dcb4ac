package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/google/uuid"
)

type pushRepository struct {
	db *database.DB
}

func NewPushRepository(db *database.DB) notification.PushRepository {
	return &pushRepository{db: db}
}

// UpsertToken registers token for userID or refreshes its last_seen_at.
func (r *pushRepository) UpsertToken(ctx context.Context, userID, token string) (*notification.PushToken, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO push_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (user_id, token) DO UPDATE SET last_seen_at = NOW()
		RETURNING id, user_id, token, created_at, last_seen_at
	`

	var t notification.PushToken
	err := q.QueryRow(ctx, query, userID, token).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert push token: %w", err)
	}
	return &t, nil
}

func (r *pushRepository) ListTokens(ctx context.Context, userID string) ([]*notification.PushToken, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, user_id, token, created_at, last_seen_at
		FROM push_tokens
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.PushToken
	for rows.Next() {
		var t notification.PushToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func (r *pushRepository) DeleteToken(ctx context.Context, token string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM push_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete push token: %w", err)
	}
	return nil
}

// CreateDeliveries inserts one row per delivery and fills in the IDs. A set
// ClaimedUntil is stored so the retry job leaves rows being sent alone.
func (r *pushRepository) CreateDeliveries(ctx context.Context, deliveries []*notification.PushDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(deliveries))
	valueArgs := make([]interface{}, 0, len(deliveries)*6)
	for i, d := range deliveries {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.Status == "" {
			d.Status = notification.DeliveryPending
		}

		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs, d.ID, d.NotificationID, d.UserID, d.Token, string(d.Status), d.ClaimedUntil)
	}

	query := fmt.Sprintf(`
		INSERT INTO push_deliveries (id, notification_id, user_id, token, status, claimed_until)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to create push deliveries: %w", err)
	}
	return nil
}

// MarkDelivery stores the outcome of one send attempt and releases the claim.
func (r *pushRepository) MarkDelivery(ctx context.Context, d *notification.PushDelivery) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE push_deliveries
		SET status = $2, attempts = $3, last_error = $4, provider_message_id = $5,
			claimed_until = NULL, updated_at = NOW()
		WHERE id = $1
	`

	_, err := q.Exec(ctx, query, d.ID, string(d.Status), d.Attempts, d.LastError, d.ProviderMessageID)
	if err != nil {
		return fmt.Errorf("failed to mark push delivery: %w", err)
	}
	d.ClaimedUntil = nil
	return nil
}

// ListRetryable implements notification.PushRepository. Rows are locked with
// SKIP LOCKED so overlapping retry runs pick disjoint sets when called inside
// a transaction; ClaimDeliveries in the same transaction keeps them apart
// after commit.
func (r *pushRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]*notification.PushDelivery, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pd.id, pd.notification_id, pd.user_id, pd.token, pd.status, pd.attempts,
			   pd.last_error, pd.provider_message_id, pd.created_at, pd.updated_at,
			   n.leave_request_id, n.type
		FROM push_deliveries pd
		INNER JOIN notifications n ON n.id = pd.notification_id
		WHERE pd.status IN ('pending', 'failed') AND pd.attempts < $1
		  AND (pd.claimed_until IS NULL OR pd.claimed_until < NOW())
		ORDER BY pd.created_at
		LIMIT $2
		FOR UPDATE OF pd SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list retryable deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*notification.PushDelivery
	for rows.Next() {
		var d notification.PushDelivery
		var status, notifType string
		err := rows.Scan(
			&d.ID,
			&d.NotificationID,
			&d.UserID,
			&d.Token,
			&status,
			&d.Attempts,
			&d.LastError,
			&d.ProviderMessageID,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.LeaveRequestID,
			&notifType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push delivery: %w", err)
		}
		d.Status = notification.DeliveryStatus(status)
		d.Type = notification.NotificationType(notifType)
		deliveries = append(deliveries, &d)
	}
	return deliveries, rows.Err()
}

// ClaimDeliveries implements notification.PushRepository.
func (r *pushRepository) ClaimDeliveries(ctx context.Context, ids []string, until time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE push_deliveries
		SET claimed_until = $2, updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := q.Exec(ctx, query, ids, until); err != nil {
		return fmt.Errorf("failed to claim push deliveries: %w", err)
	}
	return nil
}
