package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.requested_user_id, lr.assigned_user_id, lr.leave_category_id,
		   lr.from_date, lr.to_date, lr.from_type, lr.to_type, lr.total_days,
		   lr.reason, lr.document, lr.status, lr.is_deleted, lr.created_at, lr.updated_at,
		   lc.name, ru.full_name, au.full_name
	FROM leave_requests lr
	LEFT JOIN leave_categories lc ON lc.id = lr.leave_category_id
	LEFT JOIN users ru ON ru.id = lr.requested_user_id
	LEFT JOIN users au ON au.id = lr.assigned_user_id
`

func scanRequest(row pgx.Row) (leave.Request, error) {
	var lr leave.Request
	err := row.Scan(
		&lr.ID,
		&lr.RequestedUserID,
		&lr.AssignedUserID,
		&lr.CategoryID,
		&lr.FromDate,
		&lr.ToDate,
		&lr.FromType,
		&lr.ToType,
		&lr.TotalDays,
		&lr.Reason,
		&lr.Document,
		&lr.Status,
		&lr.IsDeleted,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.CategoryName,
		&lr.RequestedUserName,
		&lr.AssignedUserName,
	)
	return lr, err
}

// asDate keeps the calendar components of t and drops its zone so the DATE
// parameter matches the day the caller meant.
func asDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			requested_user_id, assigned_user_id, leave_category_id,
			from_date, to_date, from_type, to_type, total_days, reason, document, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		request.RequestedUserID,
		request.AssignedUserID,
		request.CategoryID,
		asDate(request.FromDate),
		asDate(request.ToDate),
		request.FromType,
		request.ToType,
		request.TotalDays,
		request.Reason,
		request.Document,
		leave.StatusPending,
	).Scan(&id)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements leave.RequestRepository. Soft-deleted rows are
// returned; callers decide how to treat them.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Request, error) {
	return r.getOne(ctx, leaveRequestSelect+` WHERE lr.id = $1`, id)
}

// GetByIDForUpdate implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.Request, error) {
	return r.getOne(ctx, leaveRequestSelect+` WHERE lr.id = $1 FOR UPDATE OF lr`, id)
}

func (r *leaveRequestRepositoryImpl) getOne(ctx context.Context, query string, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// Update implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET leave_category_id = $2, from_date = $3, to_date = $4, from_type = $5, to_type = $6,
			total_days = $7, reason = $8, document = $9, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND NOT is_deleted
	`

	tag, err := q.Exec(ctx, query,
		request.ID,
		request.CategoryID,
		asDate(request.FromDate),
		asDate(request.ToDate),
		request.FromType,
		request.ToType,
		request.TotalDays,
		request.Reason,
		request.Document,
	)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.Request{}, leave.ErrLeaveNotPending
	}

	return r.GetByID(ctx, request.ID)
}

// UpdateStatus implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id string, status leave.Status) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND NOT is_deleted
	`

	tag, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.Request{}, leave.ErrLeaveNotPending
	}

	return r.GetByID(ctx, id)
}

// SoftDelete implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND NOT is_deleted
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveNotPending
	}
	return nil
}

// HasOverlap implements leave.RequestRepository. Two closed ranges intersect
// iff each starts no later than the other ends.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, userID string, dateRange leave.DateRange, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1
			FROM leave_requests
			WHERE requested_user_id = $1
			  AND NOT is_deleted
			  AND status <> 'rejected'
			  AND from_date <= $3
			  AND to_date >= $2
			  AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`

	var overlaps bool
	err := q.QueryRow(ctx, query, userID, asDate(dateRange.From), asDate(dateRange.To), excludeID).Scan(&overlaps)
	if err != nil {
		return false, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	return overlaps, nil
}

// List implements leave.RequestRepository. Soft-deleted requests are never
// listed.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"NOT lr.is_deleted"}
	args := []interface{}{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.RequestedUserID != nil {
		add("lr.requested_user_id = $%d", *filter.RequestedUserID)
	}
	if filter.AssignedUserID != nil {
		add("lr.assigned_user_id = $%d", *filter.AssignedUserID)
	}
	if filter.CategoryID != nil {
		add("lr.leave_category_id = $%d", *filter.CategoryID)
	}
	if filter.Status != nil {
		add("lr.status = $%d", *filter.Status)
	}
	if filter.ExcludeStatus != nil {
		add("lr.status <> $%d", *filter.ExcludeStatus)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM leave_requests lr` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := leaveRequestSelect + where + ` ORDER BY lr.from_date DESC, lr.created_at DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.Request{}
	for rows.Next() {
		lr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListApprovedBetween implements leave.RequestRepository. Requests are
// selected by from_date.
func (r *leaveRequestRepositoryImpl) ListApprovedBetween(ctx context.Context, from, to time.Time, assignedUserID *string) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + `
		WHERE lr.status = 'approved'
		  AND NOT lr.is_deleted
		  AND lr.from_date BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR lr.assigned_user_id = $3::uuid)
		ORDER BY lr.from_date
	`

	rows, err := q.Query(ctx, query, asDate(from), asDate(to), assignedUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		lr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}
