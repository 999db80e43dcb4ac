package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/push"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/sse"
	"github.com/google/uuid"
)

const sseEventName = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize       int           // default: 100
	FlushInterval   time.Duration // default: 2 seconds
	WorkerCount     int           // default: 2
	QueueSize       int           // default: 1000
	PushConcurrency int           // default: 8
	MaxAttempts     int           // default: 5
	RetryBatchSize  int           // default: 100
	RetryLease      time.Duration // default: 5 minutes
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.PushConcurrency <= 0 {
		c.PushConcurrency = 8
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBatchSize <= 0 {
		c.RetryBatchSize = 100
	}
	if c.RetryLease <= 0 {
		c.RetryLease = 5 * time.Minute
	}
	return c
}

var _ notification.Service = (*service)(nil)

type service struct {
	tx     database.Transactor
	repo   notification.Repository
	tokens notification.PushRepository
	sender push.Sender
	hub    *sse.Hub
	config Config

	queue   chan notification.Event
	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationService creates the dispatcher and starts its workers.
func NewNotificationService(
	tx database.Transactor,
	repo notification.Repository,
	tokens notification.PushRepository,
	sender push.Sender,
	hub *sse.Hub,
	cfg Config,
) notification.Service {
	cfg = cfg.withDefaults()

	s := &service{
		tx:     tx,
		repo:   repo,
		tokens: tokens,
		sender: sender,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)
	return s
}

// Notify enqueues event. When the queue is full or the service is stopping
// the notification is written synchronously and its pushes are left pending
// for the retry job.
func (s *service) Notify(ctx context.Context, event notification.Event) {
	if s.enqueue(event) {
		return
	}

	if err := s.directInsert(ctx, event); err != nil {
		slog.Error("failed to store notification",
			"target_user_id", event.TargetUserID,
			"leave_request_id", event.LeaveRequestID,
			"type", event.Type,
			"error", err,
		)
	}
}

func (s *service) enqueue(event notification.Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return false
	}
	select {
	case s.queue <- event:
		return true
	default:
		slog.Warn("notification queue full, writing directly",
			"target_user_id", event.TargetUserID,
			"type", event.Type,
		)
		return false
	}
}

func (s *service) worker(id int) {
	defer s.wg.Done()
	logger := slog.With("worker", id)

	batch := make([]notification.Event, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, ev := range batch {
			notifications[i] = newNotification(ev)
		}
		batch = batch[:0]

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			logger.Error("failed to insert notifications", "count", len(notifications), "error", err)
			return
		}
		logger.Debug("inserted notifications", "count", len(notifications))

		for _, n := range notifications {
			s.publish(n)
			if err := s.pushNotification(ctx, n); err != nil {
				logger.Error("failed to push notification", "notification_id", n.ID, "error", err)
			}
		}
	}

	for {
		select {
		case ev := <-s.queue:
			batch = append(batch, ev)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
		drain:
			for {
				select {
				case ev := <-s.queue:
					batch = append(batch, ev)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

// directInsert stores the notification in the caller's goroutine, detached
// from the caller's cancellation.
func (s *service) directInsert(ctx context.Context, event notification.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	n := newNotification(event)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(n)

	_, err := s.createDeliveries(ctx, n, false)
	return err
}

func newNotification(ev notification.Event) *notification.Notification {
	var leaveRequestID *string
	if ev.LeaveRequestID != "" {
		id := ev.LeaveRequestID
		leaveRequestID = &id
	}
	return &notification.Notification{
		ID:             uuid.New().String(),
		TargetUserID:   ev.TargetUserID,
		LeaveRequestID: leaveRequestID,
		Type:           ev.Type,
		Message:        ev.Message,
		CreatedAt:      time.Now(),
	}
}

func (s *service) publish(n *notification.Notification) {
	s.hub.Publish(n.TargetUserID, sse.Event{Name: sseEventName, Data: notification.ToResponse(n)})
}

// GetNotifications returns a page of the user's notifications, newest first.
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) RegisterPushToken(ctx context.Context, userID string, req notification.RegisterPushTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := s.tokens.UpsertToken(ctx, userID, req.FCMToken)
	return err
}

// Subscribe streams live notifications for userID until ctx ends or the
// returned cancel func is called.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cancel := s.hub.Subscribe(userID)
	slog.Debug("sse subscribed", "user_id", userID, "streams", s.hub.SubscriberCount(userID))

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel
}

// Stop drains the queue and waits for the workers. Later Notify calls write
// directly.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	slog.Info("notification service stopped")
}
