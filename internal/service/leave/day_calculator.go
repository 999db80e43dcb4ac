package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// DayCalculator turns a date range and its boundary day types into the
// number of leave days it consumes. All dates are interpreted as calendar
// days in loc.
type DayCalculator struct {
	loc *time.Location
	now func() time.Time
}

func NewDayCalculator(loc *time.Location) *DayCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &DayCalculator{loc: loc, now: time.Now}
}

// WithClock replaces the clock used for backdate checks.
func (c *DayCalculator) WithClock(now func() time.Time) *DayCalculator {
	c.now = now
	return c
}

func (c *DayCalculator) Location() *time.Location {
	return c.loc
}

// Normalize keeps the calendar components of t and returns that day's
// midnight in the service location.
func (c *DayCalculator) Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// Today is the current calendar day in the service location.
func (c *DayCalculator) Today() time.Time {
	return c.Normalize(c.now().In(c.loc))
}

// Count returns the leave days of [from, to]. A single day is half if either
// boundary marker is a half type; otherwise each half boundary takes half a
// day off the inclusive day count.
func (c *DayCalculator) Count(from, to time.Time, fromType, toType leave.DayType) (decimal.Decimal, error) {
	from, to = c.Normalize(from), c.Normalize(to)
	if from.After(to) {
		return decimal.Zero, leave.ErrInvalidDateRange
	}

	days := daysBetween(from, to) + 1
	if days == 1 {
		if fromType.IsHalf() || toType.IsHalf() {
			return half, nil
		}
		return decimal.NewFromInt(1), nil
	}

	total := decimal.NewFromInt(int64(days))
	if fromType.IsHalf() {
		total = total.Sub(half)
	}
	if toType.IsHalf() {
		total = total.Sub(half)
	}
	return total, nil
}

// CheckBackdate rejects a start day earlier than yesterday.
func (c *DayCalculator) CheckBackdate(from time.Time) error {
	yesterday := c.Today().AddDate(0, 0, -1)
	if c.Normalize(from).Before(yesterday) {
		return leave.ErrBackdateNotAllowed
	}
	return nil
}

// DayWeight is how much a single calendar day d of r counts.
func (c *DayCalculator) DayWeight(r leave.Request, d time.Time) decimal.Decimal {
	from, to, d := c.Normalize(r.FromDate), c.Normalize(r.ToDate), c.Normalize(d)
	if d.Before(from) || d.After(to) {
		return decimal.Zero
	}
	if from.Equal(to) {
		if r.FromType.IsHalf() || r.ToType.IsHalf() {
			return half
		}
		return decimal.NewFromInt(1)
	}
	if (d.Equal(from) && r.FromType.IsHalf()) || (d.Equal(to) && r.ToType.IsHalf()) {
		return half
	}
	return decimal.NewFromInt(1)
}

// daysBetween counts calendar days from a to b without DST drift.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
