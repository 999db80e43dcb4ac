package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/push"
	"golang.org/x/sync/errgroup"
)

// pushNotification creates one delivery per registered token of the target
// and sends them.
func (s *service) pushNotification(ctx context.Context, n *notification.Notification) error {
	deliveries, err := s.createDeliveries(ctx, n, true)
	if err != nil || len(deliveries) == 0 {
		return err
	}
	unregistered := s.sendAll(ctx, deliveries)
	return s.record(ctx, deliveries, unregistered)
}

// createDeliveries stores one pending delivery per token. Claimed deliveries
// are about to be sent by the caller and stay invisible to the retry job
// until the lease runs out.
func (s *service) createDeliveries(ctx context.Context, n *notification.Notification, claim bool) ([]*notification.PushDelivery, error) {
	tokens, err := s.tokens.ListTokens(ctx, n.TargetUserID)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	var claimedUntil *time.Time
	if claim {
		until := time.Now().Add(s.config.RetryLease)
		claimedUntil = &until
	}

	deliveries := make([]*notification.PushDelivery, len(tokens))
	for i, t := range tokens {
		deliveries[i] = &notification.PushDelivery{
			NotificationID: n.ID,
			UserID:         n.TargetUserID,
			Token:          t.Token,
			Status:         notification.DeliveryPending,
			ClaimedUntil:   claimedUntil,
			LeaveRequestID: n.LeaveRequestID,
			Type:           n.Type,
		}
	}
	if err := s.tokens.CreateDeliveries(ctx, deliveries); err != nil {
		return nil, fmt.Errorf("create deliveries: %w", err)
	}
	return deliveries, nil
}

// sendAll sends every delivery with bounded concurrency and records the
// outcome on each delivery in place. The result flags deliveries whose token
// the provider no longer accepts.
func (s *service) sendAll(ctx context.Context, deliveries []*notification.PushDelivery) []bool {
	unregistered := make([]bool, len(deliveries))

	var g errgroup.Group
	g.SetLimit(s.config.PushConcurrency)
	for i, d := range deliveries {
		i, d := i, d
		g.Go(func() error {
			unregistered[i] = s.attempt(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	return unregistered
}

func (s *service) attempt(ctx context.Context, d *notification.PushDelivery) bool {
	msg := push.NewMessage(d.Token, pushData(d))

	d.Attempts++
	id, err := s.sender.Send(ctx, msg)
	if err == nil {
		d.Status = notification.DeliverySent
		d.ProviderMessageID = &id
		d.LastError = nil
		return false
	}

	reason := err.Error()
	d.Status = notification.DeliveryFailed
	d.LastError = &reason
	if errors.Is(err, push.ErrTokenUnregistered) {
		// No point retrying a dead token.
		d.Attempts = max(d.Attempts, s.config.MaxAttempts)
		return true
	}
	return false
}

// record persists delivery outcomes one at a time. A failed write leaves only
// that delivery claimed; the others keep their outcome.
func (s *service) record(ctx context.Context, deliveries []*notification.PushDelivery, unregistered []bool) error {
	var errs []error
	for i, d := range deliveries {
		if err := s.tokens.MarkDelivery(ctx, d); err != nil {
			errs = append(errs, err)
			continue
		}
		if d.Status == notification.DeliverySent {
			slog.Debug("push delivered", "delivery_id", d.ID, "attempts", d.Attempts)
			continue
		}

		slog.Warn("push failed", "delivery_id", d.ID, "attempts", d.Attempts, "error", *d.LastError)
		if unregistered[i] {
			if err := s.tokens.DeleteToken(ctx, d.Token); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func pushData(d *notification.PushDelivery) map[string]string {
	data := map[string]string{"type": string(d.Type)}
	if d.LeaveRequestID != nil {
		data["leaveRequestId"] = *d.LeaveRequestID
	}
	return data
}

// RetryPendingDeliveries resends pending and failed deliveries still under
// the attempt limit. Rows are claimed in a short transaction so concurrent
// runs do not pick the same deliveries; sends and their outcomes happen after
// commit so one failed write cannot undo the others.
func (s *service) RetryPendingDeliveries(ctx context.Context) error {
	var deliveries []*notification.PushDelivery
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		deliveries, err = s.tokens.ListRetryable(ctx, s.config.MaxAttempts, s.config.RetryBatchSize)
		if err != nil || len(deliveries) == 0 {
			return err
		}

		ids := make([]string, len(deliveries))
		for i, d := range deliveries {
			ids[i] = d.ID
		}
		return s.tokens.ClaimDeliveries(ctx, ids, time.Now().Add(s.config.RetryLease))
	})
	if err != nil {
		return fmt.Errorf("claim push deliveries: %w", err)
	}
	if len(deliveries) == 0 {
		return nil
	}

	unregistered := s.sendAll(ctx, deliveries)
	if err := s.record(ctx, deliveries, unregistered); err != nil {
		return fmt.Errorf("record push deliveries: %w", err)
	}
	slog.Info("retried push deliveries", "count", len(deliveries))
	return nil
}
