package leave

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the leave tables. The transactor
// snapshots it and restores the snapshot when fn fails.
type memStore struct {
	users      map[string]user.User
	categories []leave.Category
	balances   map[string]leave.Balance
	requests   map[string]leave.Request
	seq        int

	// lockedUsers records LockByID calls across transactions.
	lockedUsers []string
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]user.User{},
		balances: map[string]leave.Balance{},
		requests: map[string]leave.Request{},
	}
}

func balanceKey(userID, categoryID string) string { return userID + "/" + categoryID }

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) snapshot() *memStore {
	c := &memStore{
		users:      map[string]user.User{},
		categories: s.categories,
		balances:   map[string]leave.Balance{},
		requests:   map[string]leave.Request{},
		seq:        s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.users, s.balances, s.requests, s.seq = from.users, from.balances, from.requests, from.seq
}

type memTx struct{ s *memStore }

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if u.ID == "" {
		u.ID = r.s.nextID("user")
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r memUsers) LockByID(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	r.s.lockedUsers = append(r.s.lockedUsers, id)
	return nil
}

func (r memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memCategories struct{ s *memStore }

func (r memCategories) ResolveByName(ctx context.Context, name string, role user.Role) (leave.Category, error) {
	for _, c := range r.s.categories {
		if c.Name == name && c.AppliesTo(role) {
			return c, nil
		}
	}
	return leave.Category{}, leave.ErrCategoryNotFound
}

func (r memCategories) GetByID(ctx context.Context, id string) (leave.Category, error) {
	for _, c := range r.s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return leave.Category{}, leave.ErrCategoryNotFound
}

func (r memCategories) ListApplicable(ctx context.Context, role user.Role) ([]leave.Category, error) {
	var out []leave.Category
	for _, c := range r.s.categories {
		if c.AppliesTo(role) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memBalances struct{ s *memStore }

func (r memBalances) Create(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	key := balanceKey(b.UserID, b.CategoryID)
	if _, ok := r.s.balances[key]; ok {
		return leave.Balance{}, fmt.Errorf("duplicate balance %s", key)
	}
	b.ID = r.s.nextID("balance")
	r.s.balances[key] = b
	return b, nil
}

func (r memBalances) GetByUserAndCategory(ctx context.Context, userID, categoryID string) (leave.Balance, error) {
	b, ok := r.s.balances[balanceKey(userID, categoryID)]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (r memBalances) ListByUser(ctx context.Context, userID string) ([]leave.Balance, error) {
	var out []leave.Balance
	for _, b := range r.s.balances {
		if b.UserID != userID {
			continue
		}
		for _, c := range r.s.categories {
			if c.ID == b.CategoryID {
				c := c
				b.Category = &c
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category.DisplayOrder < out[j].Category.DisplayOrder })
	return out, nil
}

func (r memBalances) Reserve(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	key := balanceKey(userID, categoryID)
	b, ok := r.s.balances[key]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	if b.Remaining().LessThan(days) {
		return leave.ErrInsufficientBalance
	}
	b.TotalUsed = b.TotalUsed.Add(days)
	r.s.balances[key] = b
	return nil
}

func (r memBalances) Release(ctx context.Context, userID, categoryID string, days decimal.Decimal) error {
	key := balanceKey(userID, categoryID)
	b, ok := r.s.balances[key]
	if !ok {
		return leave.ErrBalanceNotFound
	}
	if b.TotalUsed.LessThan(days) {
		return leave.ErrLedgerUnderflow
	}
	b.TotalUsed = b.TotalUsed.Sub(days)
	r.s.balances[key] = b
	return nil
}

type memRequests struct{ s *memStore }

func (r memRequests) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	req.ID = r.s.nextID("leave")
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.s.requests[req.ID] = req
	return req, nil
}

func (r memRequests) GetByID(ctx context.Context, id string) (leave.Request, error) {
	req, ok := r.s.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r memRequests) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return r.GetByID(ctx, id)
}

func (r memRequests) Update(ctx context.Context, req leave.Request) (leave.Request, error) {
	existing, ok := r.s.requests[req.ID]
	if !ok || !existing.IsPending() {
		return leave.Request{}, leave.ErrLeaveNotPending
	}
	r.s.requests[req.ID] = req
	return req, nil
}

func (r memRequests) UpdateStatus(ctx context.Context, id string, status leave.Status) (leave.Request, error) {
	existing, ok := r.s.requests[id]
	if !ok || !existing.IsPending() {
		return leave.Request{}, leave.ErrLeaveNotPending
	}
	existing.Status = status
	r.s.requests[id] = existing
	return existing, nil
}

func (r memRequests) SoftDelete(ctx context.Context, id string) error {
	existing, ok := r.s.requests[id]
	if !ok || !existing.IsPending() {
		return leave.ErrLeaveNotPending
	}
	existing.IsDeleted = true
	r.s.requests[id] = existing
	return nil
}

func (r memRequests) HasOverlap(ctx context.Context, userID string, dateRange leave.DateRange, excludeID *string) (bool, error) {
	for _, req := range r.s.requests {
		if req.RequestedUserID != userID || !req.IsActive() {
			continue
		}
		if excludeID != nil && req.ID == *excludeID {
			continue
		}
		if req.Range().Overlaps(dateRange) {
			return true, nil
		}
	}
	return false, nil
}

func (r memRequests) List(ctx context.Context, f leave.RequestFilter) ([]leave.Request, int64, error) {
	var out []leave.Request
	for _, req := range r.s.requests {
		switch {
		case req.IsDeleted,
			f.RequestedUserID != nil && req.RequestedUserID != *f.RequestedUserID,
			f.AssignedUserID != nil && req.AssignedUserID != *f.AssignedUserID,
			f.CategoryID != nil && req.CategoryID != *f.CategoryID,
			f.Status != nil && req.Status != *f.Status,
			f.ExcludeStatus != nil && req.Status == *f.ExcludeStatus:
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromDate.After(out[j].FromDate) })
	total := int64(len(out))
	if f.Limit > 0 {
		start := (f.Page - 1) * f.Limit
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r memRequests) ListApprovedBetween(ctx context.Context, from, to time.Time, assignedUserID *string) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range r.s.requests {
		if req.IsDeleted || req.Status != leave.StatusApproved {
			continue
		}
		if req.FromDate.Before(from) || req.FromDate.After(to) {
			continue
		}
		if assignedUserID != nil && req.AssignedUserID != *assignedUserID {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type recordingDispatcher struct {
	events []notification.Event
}

func (d *recordingDispatcher) Notify(ctx context.Context, event notification.Event) {
	d.events = append(d.events, event)
}
