package booking

import (
	"context"
	"errors"
	"time"

	"rentora/internal/domain/pricing"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/events"
)

var (
	ErrInvalidGuests            = errors.New("booking: guests count must be positive")
	ErrInvalidState             = errors.New("booking: invalid state transition")
	ErrCapacityExceeded         = errors.New("booking: guests exceed property capacity")
	ErrMinStayNotMet            = errors.New("booking: stay shorter than property minimum")
	ErrZeroTotal                = errors.New("booking: total must be positive")
	ErrPaymentRefRequired       = errors.New("booking: payment reference required")
	ErrCancellationWindowClosed = errors.New("booking: check-in closer than the free-cancellation window")
	ErrStayNotEnded             = errors.New("booking: check-out has not passed yet")
	ErrCheckInPast              = errors.New("booking: check-in date is in the past")
	ErrBookingNotFound          = errors.New("booking: not found")
	ErrConflict                 = errors.New("booking: dates conflict with an existing reservation")
)

type BookingID string

type BookingState string

const (
	StateDraft          BookingState = "DRAFT"
	StateSummary        BookingState = "SUMMARY"
	StatePaymentPending BookingState = "PAYMENT_PENDING"
	StateConfirmed      BookingState = "CONFIRMED"
	StateCheckedIn      BookingState = "CHECKED_IN"
	StateCancelled      BookingState = "CANCELLED"
	StateCompleted      BookingState = "COMPLETED"
)

// ActiveStates are the states that occupy the property calendar; no two
// bookings in these states may overlap for one property.
func ActiveStates() []BookingState {
	return []BookingState{StatePaymentPending, StateConfirmed, StateCheckedIn}
}

func (s BookingState) Active() bool {
	switch s {
	case StatePaymentPending, StateConfirmed, StateCheckedIn:
		return true
	}
	return false
}

func (s BookingState) Terminal() bool {
	return s == StateCancelled || s == StateCompleted
}

// AuditEntry records who drove a status transition and why.
type AuditEntry struct {
	Actor  string
	From   BookingState
	To     BookingState
	Reason string
	At     time.Time
}

type Booking struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	HostID     property.HostID
	Range      daterange.DateRange
	Kind       property.RentalKind
	Months     int
	Guests     int
	Quote      pricing.Quote
	State      BookingState
	PaymentRef string
	Audit      []AuditEntry
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByPaymentRef(ctx context.Context, ref string) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByProperty(ctx context.Context, id property.PropertyID) ([]*Booking, error)
	ListByState(ctx context.Context, state BookingState, updatedBefore time.Time) ([]*Booking, error)
}

// ReservationStore is the single authority for committing a reservation:
// Reserve re-runs the conflict check and persists the booking atomically,
// so of any set of racing callers exactly one succeeds and the rest get
// ErrConflict. Release persists the booking's current state and frees the
// calendar again on cancellation.
type ReservationStore interface {
	Reserve(ctx context.Context, b *Booking) error
	Release(ctx context.Context, b *Booking) error
}

type CreateParams struct {
	ID         BookingID
	PropertyID property.PropertyID
	GuestID    string
	HostID     property.HostID
	Range      daterange.DateRange
	Kind       property.RentalKind
	Months     int
	Guests     int
	CreatedAt  time.Time
}

// NewBooking starts a draft selection. Capacity and minimum-stay rules are
// checked by ValidateSelection before the draft may move to SUMMARY.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	return &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		HostID:     params.HostID,
		Range:      params.Range,
		Kind:       params.Kind,
		Months:     params.Months,
		Guests:     params.Guests,
		State:      StateDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidateSelection enforces the property's capacity, supported rental
// kinds and minimum-stay constraints against a candidate selection.
func ValidateSelection(p *property.Property, kind property.RentalKind, dr daterange.DateRange, months, guests int) error {
	if !p.Terms.Supports(kind) {
		return property.ErrKindNotSupported
	}
	if guests > p.GuestCapacity {
		return ErrCapacityExceeded
	}
	switch kind {
	case property.KindDaily:
		if dr.Nights() < p.Terms.Daily.MinNights {
			return ErrMinStayNotMet
		}
	case property.KindMonthly:
		if months < p.Terms.Monthly.MinMonths {
			return ErrMinStayNotMet
		}
	}
	return nil
}

// ValidateCheckIn rejects selections starting before today.
func ValidateCheckIn(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Day(now)) {
		return ErrCheckInPast
	}
	return nil
}

// Summarize moves a validated, priced draft into SUMMARY.
func (b *Booking) Summarize(q pricing.Quote, actor string, now time.Time) error {
	if b.State != StateDraft {
		return ErrInvalidState
	}
	if q.Total.Amount <= 0 {
		return ErrZeroTotal
	}
	b.Quote = q
	b.transition(StateSummary, actor, "validated and priced", now)
	b.Record(BookingRequested{BookingID: b.ID, PropertyID: b.PropertyID, GuestID: b.GuestID, Range: b.Range, Guests: b.Guests, Total: q.Total, At: b.UpdatedAt})
	return nil
}

// InitiatePayment moves SUMMARY to PAYMENT_PENDING once the gateway has
// issued a redirect handle for the charge.
func (b *Booking) InitiatePayment(paymentRef string, actor string, now time.Time) error {
	if b.State != StateSummary {
		return ErrInvalidState
	}
	if paymentRef == "" {
		return ErrPaymentRefRequired
	}
	b.PaymentRef = paymentRef
	b.transition(StatePaymentPending, actor, "payment initiated", now)
	b.Record(PaymentInitiated{BookingID: b.ID, PaymentRef: paymentRef, At: b.UpdatedAt})
	return nil
}

// ConfirmCash confirms directly from SUMMARY for cash stays, which have no
// payment step.
func (b *Booking) ConfirmCash(actor string, now time.Time) error {
	if b.State != StateSummary {
		return ErrInvalidState
	}
	b.transition(StateConfirmed, actor, "cash method accepted", now)
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Total: b.Quote.Total, At: b.UpdatedAt})
	return nil
}

// ConfirmPayment reacts to the gateway's success signal.
func (b *Booking) ConfirmPayment(actor string, now time.Time) error {
	if b.State != StatePaymentPending {
		return ErrInvalidState
	}
	b.transition(StateConfirmed, actor, "payment succeeded", now)
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Total: b.Quote.Total, At: b.UpdatedAt})
	return nil
}

// Cancel is permitted from any non-terminal state, free of penalty only
// while check-in is further than FreeCancellationWindow away. Closer
// cancellations are routed to the penalty policy instead.
func (b *Booking) Cancel(actor, reason string, now time.Time) error {
	if b.State.Terminal() || b.State == StateDraft {
		return ErrInvalidState
	}
	if !CanCancelFree(b.Range, now) {
		return ErrCancellationWindowClosed
	}
	b.transition(StateCancelled, actor, reason, now)
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Expire cancels an abandoned payment regardless of the check-in distance.
func (b *Booking) Expire(reason string, now time.Time) error {
	if b.State != StatePaymentPending {
		return ErrInvalidState
	}
	b.transition(StateCancelled, "system", reason, now)
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(actor string, now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.transition(StateCheckedIn, actor, "guest checked in", now)
	b.Record(CheckInCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Complete closes a stay once check-out has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed && b.State != StateCheckedIn {
		return ErrInvalidState
	}
	if now.Before(b.Range.CheckOut) {
		return ErrStayNotEnded
	}
	b.transition(StateCompleted, "system", "check-out passed", now)
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) transition(to BookingState, actor, reason string, now time.Time) {
	at := now.UTC()
	b.Audit = append(b.Audit, AuditEntry{Actor: actor, From: b.State, To: to, Reason: reason, At: at})
	b.State = to
	b.UpdatedAt = at
}
