package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// DayType marks whether a boundary day of a request is taken in full or as
// a half day.
type DayType string

const (
	DayTypeFull          DayType = "full"
	DayTypeHalfMorning   DayType = "half_morning"
	DayTypeHalfAfternoon DayType = "half_afternoon"
)

// ParseDayType maps an external string to a DayType. The legacy spaced
// spellings ("half morning") are accepted on input.
func ParseDayType(s string) (DayType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return DayTypeFull, true
	case "half_morning", "half morning":
		return DayTypeHalfMorning, true
	case "half_afternoon", "half afternoon":
		return DayTypeHalfAfternoon, true
	}
	return "", false
}

func (d DayType) IsHalf() bool {
	return d == DayTypeHalfMorning || d == DayTypeHalfAfternoon
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

type TargetType string

const (
	TargetTypeAll  TargetType = "All"
	TargetTypeRole TargetType = "Role"
)

// Category is immutable reference data describing a kind of leave and who
// it applies to.
type Category struct {
	ID           string
	Name         string
	TargetType   TargetType
	TargetRole   *user.Role
	TotalDays    decimal.Decimal
	DisplayOrder int
}

// AppliesTo reports whether a user with role may take this category.
func (c Category) AppliesTo(role user.Role) bool {
	if c.TargetType == TargetTypeAll {
		return true
	}
	return c.TargetRole != nil && *c.TargetRole == role
}

// Balance is the ledger row for one (user, category) pair. TotalAvailable is
// the cap; remaining is always derived.
type Balance struct {
	ID             string
	UserID         string
	CategoryID     string
	TotalUsed      decimal.Decimal
	TotalAvailable decimal.Decimal
	ExpiredDate    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join
	Category *Category
}

func (b Balance) Remaining() decimal.Decimal {
	return b.TotalAvailable.Sub(b.TotalUsed)
}

// DateRange is a closed range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Overlaps reports whether r and o share at least one day.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.From.After(o.To) && !r.To.Before(o.From)
}

// Request is a leave request. Status and IsDeleted are the two independent
// axes of its lifecycle.
type Request struct {
	ID              string
	RequestedUserID string
	AssignedUserID  string
	CategoryID      string

	FromDate time.Time
	ToDate   time.Time
	FromType DayType
	ToType   DayType

	TotalDays decimal.Decimal
	Reason    string
	Document  *string

	Status    Status
	IsDeleted bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	CategoryName      *string
	RequestedUserName *string
	AssignedUserName  *string
}

func (r Request) Range() DateRange {
	return DateRange{From: r.FromDate, To: r.ToDate}
}

// IsPending reports whether the request can still be edited, deleted,
// approved or rejected.
func (r Request) IsPending() bool {
	return r.Status == StatusPending && !r.IsDeleted
}

// IsActive reports whether the request still holds days in the ledger.
func (r Request) IsActive() bool {
	return !r.IsDeleted && r.Status != StatusRejected
}

// IsParticipant reports whether actor may edit or delete the request.
func (r Request) IsParticipant(actor user.Actor) bool {
	return actor.IsAdminOffice() || r.RequestedUserID == actor.UserID || r.AssignedUserID == actor.UserID
}

// CanDecide reports whether actor may approve or reject the request.
func (r Request) CanDecide(actor user.Actor) bool {
	return actor.IsAdminOffice() || r.AssignedUserID == actor.UserID
}

// CanView applies the read access rules for a single request.
func (r Request) CanView(actor user.Actor) bool {
	switch actor.Role {
	case user.RoleAdminOffice:
		return true
	case user.RoleManager:
		return r.RequestedUserID == actor.UserID || r.AssignedUserID == actor.UserID
	default:
		return r.RequestedUserID == actor.UserID
	}
}
