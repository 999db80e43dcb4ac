package notification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/push"
)

type passTx struct{}

func (passTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	mu            sync.Mutex
	notifications []*notification.Notification
	batches       int
}

func (r *memRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *memRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.notifications = append(r.notifications, ns...)
	return nil
}

func (r *memRepo) GetByUserID(ctx context.Context, userID string, page, pageSize int) ([]*notification.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mine []*notification.Notification
	for _, n := range r.notifications {
		if n.TargetUserID == userID {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	start := (page - 1) * pageSize
	if start > len(mine) {
		start = len(mine)
	}
	end := min(start+pageSize, len(mine))
	return mine[start:end], int64(len(mine)), nil
}

func (r *memRepo) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, x := range r.notifications {
		if x.TargetUserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, x := range r.notifications {
		if x.TargetUserID == userID && !x.IsRead {
			x.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memRepo) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.notifications...)
}

type memPush struct {
	mu         sync.Mutex
	tokens     map[string][]string
	deliveries []*notification.PushDelivery
	seq        int

	// markErrs fails MarkDelivery for deliveries to these tokens.
	markErrs map[string]error
}

func newMemPush() *memPush {
	return &memPush{tokens: map[string][]string{}, markErrs: map[string]error{}}
}

func (p *memPush) UpsertToken(ctx context.Context, userID, token string) (*notification.PushToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tokens[userID] {
		if t == token {
			return &notification.PushToken{UserID: userID, Token: token}, nil
		}
	}
	p.tokens[userID] = append(p.tokens[userID], token)
	return &notification.PushToken{UserID: userID, Token: token}, nil
}

func (p *memPush) ListTokens(ctx context.Context, userID string) ([]*notification.PushToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*notification.PushToken
	for _, t := range p.tokens[userID] {
		out = append(out, &notification.PushToken{UserID: userID, Token: t})
	}
	return out, nil
}

func (p *memPush) DeleteToken(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for userID, tokens := range p.tokens {
		kept := tokens[:0]
		for _, t := range tokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		p.tokens[userID] = kept
	}
	return nil
}

func (p *memPush) CreateDeliveries(ctx context.Context, deliveries []*notification.PushDelivery) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range deliveries {
		p.seq++
		d.ID = fmt.Sprintf("delivery-%d", p.seq)
		cp := *d
		p.deliveries = append(p.deliveries, &cp)
	}
	return nil
}

func (p *memPush) MarkDelivery(ctx context.Context, d *notification.PushDelivery) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.markErrs[d.Token]; ok {
		return err
	}
	for _, stored := range p.deliveries {
		if stored.ID == d.ID {
			stored.Status = d.Status
			stored.Attempts = d.Attempts
			stored.LastError = d.LastError
			stored.ProviderMessageID = d.ProviderMessageID
			stored.ClaimedUntil = nil
			d.ClaimedUntil = nil
			return nil
		}
	}
	return fmt.Errorf("delivery %s not found", d.ID)
}

func (p *memPush) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]*notification.PushDelivery, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*notification.PushDelivery
	for _, d := range p.deliveries {
		claimed := d.ClaimedUntil != nil && d.ClaimedUntil.After(time.Now())
		if d.Status != notification.DeliverySent && d.Attempts < maxAttempts && !claimed && len(out) < limit {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (p *memPush) ClaimDeliveries(ctx context.Context, ids []string, until time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.deliveries {
		for _, id := range ids {
			if d.ID == id {
				u := until
				d.ClaimedUntil = &u
			}
		}
	}
	return nil
}

func (p *memPush) snapshot() []notification.PushDelivery {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.PushDelivery, len(p.deliveries))
	for i, d := range p.deliveries {
		out[i] = *d
	}
	return out
}

// fakeSender fails tokens listed in errs and succeeds otherwise.
type fakeSender struct {
	mu   sync.Mutex
	sent []push.Message
	errs map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg push.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[msg.Token]; ok {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return "msg-" + msg.Token, nil
}

func (f *fakeSender) messages() []push.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]push.Message(nil), f.sent...)
}
