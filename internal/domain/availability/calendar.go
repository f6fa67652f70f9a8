package availability

import (
	"context"
	"errors"
	"time"

	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps with an existing block")
	ErrRangeNotFound    = errors.New("availability: range not found")
)

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

// Block marks a property range as unavailable, sourced from an active
// reservation or an explicit host block.
type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

type Calendar struct {
	PropertyID property.PropertyID
	Blocks     []Block
	Version    int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id property.PropertyID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id property.PropertyID) *Calendar {
	return &Calendar{PropertyID: id}
}

// CanReserve is the conflict predicate: a candidate [check-in, check-out)
// is reservable iff it overlaps no existing block.
func (c *Calendar) CanReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Reserve occupies the range on behalf of a booking.
func (c *Calendar) Reserve(r daterange.DateRange, bookingID string, now time.Time) error {
	if !c.CanReserve(r) {
		c.Record(OverbookingPrevented{PropertyID: c.PropertyID, Range: r, At: now.UTC()})
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonBooking, Reference: bookingID, CreatedAt: now.UTC()})
	c.Record(RangeBlocked{PropertyID: c.PropertyID, Range: r, Reason: ReasonBooking, At: now.UTC()})
	return nil
}

// BlockRange records a host-set manual block.
func (c *Calendar) BlockRange(r daterange.DateRange, reference string, now time.Time) error {
	if !c.CanReserve(r) {
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonHostBlock, Reference: reference, CreatedAt: now.UTC()})
	c.Record(RangeBlocked{PropertyID: c.PropertyID, Range: r, Reason: ReasonHostBlock, At: now.UTC()})
	return nil
}

// Release frees the block referencing a booking or host block.
func (c *Calendar) Release(reference string, now time.Time) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.Reference == reference {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRangeNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.Record(RangeReleased{PropertyID: c.PropertyID, Range: removed.Range, Reason: removed.Reason, At: now.UTC()})
	return nil
}

// BlockedDates derives the set of calendar dates that cannot start or
// contain a new booking, restricted to [from, to). Pure read.
func (c *Calendar) BlockedDates(from, to time.Time) []time.Time {
	window := daterange.DateRange{CheckIn: daterange.Day(from), CheckOut: daterange.Day(to)}
	if window.Validate() != nil {
		return nil
	}
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, block := range c.Blocks {
		if !block.Range.Overlaps(window) {
			continue
		}
		for _, d := range block.Range.Dates() {
			if d.Before(window.CheckIn) || !d.Before(window.CheckOut) {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}
