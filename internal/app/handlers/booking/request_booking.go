package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
	"rentora/internal/domain/pricing"
	"rentora/internal/domain/promo"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
)

// RequestBookingCommand validates a stay selection, prices it and persists
// the booking in SUMMARY. The calendar is only checked in advisory mode
// here; the authoritative reservation happens at confirmation.
type RequestBookingCommand struct {
	BookingID   string    `validate:"required"`
	PropertyID  string    `validate:"required"`
	GuestID     string    `validate:"required"`
	Kind        string    `validate:"required,oneof=DAILY MONTHLY"`
	CheckIn     time.Time `validate:"required"`
	CheckOut    time.Time
	Months      int
	Guests      int `validate:"required,gt=0"`
	PromoCode   string
	StrictPromo bool
	RequestKey  string
}

func (RequestBookingCommand) Key() string { return "booking.request" }

func (c RequestBookingCommand) IdempotencyKey() string { return c.RequestKey }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

// AvailabilityProbe answers cheap advisory availability checks from a
// cached view of the calendars.
type AvailabilityProbe interface {
	IsLikelyFree(id property.PropertyID, dr daterange.DateRange) bool
}

type RequestBookingHandler struct {
	calc  pricing.Calculator
	box   appoutbox.Outbox
	probe AvailabilityProbe
	log   *slog.Logger
	clock func() time.Time
}

func NewRequestBookingHandler(calc pricing.Calculator, box appoutbox.Outbox, probe AvailabilityProbe, log *slog.Logger, clock func() time.Time) *RequestBookingHandler {
	if clock == nil {
		clock = time.Now
	}
	return &RequestBookingHandler{calc: calc, box: box, probe: probe, log: log, clock: clock}
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()

	prop, err := unit.Properties().ByID(ctx, property.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}

	kind := property.RentalKind(cmd.Kind)
	dr, err := selectionRange(kind, cmd.CheckIn, cmd.CheckOut, cmd.Months)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateCheckIn(dr, now); err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateSelection(prop, kind, dr, cmd.Months, cmd.Guests); err != nil {
		return nil, err
	}

	if h.probe != nil && !h.probe.IsLikelyFree(prop.ID, dr) {
		return nil, domainbooking.ErrConflict
	}
	calendar, err := unit.Availability().Calendar(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	if !calendar.CanReserve(dr) {
		return nil, domainbooking.ErrConflict
	}

	promoCode, err := h.resolvePromo(ctx, unit, cmd, dr)
	if err != nil {
		return nil, err
	}

	quote, err := h.calc.Quote(ctx, pricing.Input{
		Terms:  prop.Terms,
		Kind:   kind,
		Range:  dr,
		Months: cmd.Months,
		Promo:  promoCode,
	})
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.BookingID),
		PropertyID: prop.ID,
		GuestID:    cmd.GuestID,
		HostID:     prop.Host,
		Range:      dr,
		Kind:       kind,
		Months:     cmd.Months,
		Guests:     cmd.Guests,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := b.Summarize(quote, cmd.GuestID, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	result := dto.NewBooking(b)
	return &result, nil
}

func (h *RequestBookingHandler) resolvePromo(ctx context.Context, unit uow.UnitOfWork, cmd RequestBookingCommand, dr daterange.DateRange) (*promo.Code, error) {
	if cmd.PromoCode == "" {
		return nil, nil
	}
	code, err := unit.Promos().Resolve(ctx, cmd.PromoCode, cmd.GuestID, dr)
	if err != nil {
		if cmd.StrictPromo {
			return nil, err
		}
		// The stay proceeds without the discount when the code is bad.
		h.log.Warn("promo code rejected",
			slog.String("code", cmd.PromoCode),
			slog.String("guest_id", cmd.GuestID),
			slog.Any("error", err))
		return nil, nil
	}
	if code.Expired(h.clock()) {
		if cmd.StrictPromo {
			return nil, promo.ErrCodeExpired
		}
		return nil, nil
	}
	return &code, nil
}

func selectionRange(kind property.RentalKind, checkIn, checkOut time.Time, months int) (daterange.DateRange, error) {
	switch kind {
	case property.KindMonthly:
		return daterange.NewMonths(checkIn, months)
	case property.KindDaily:
		return daterange.New(checkIn, checkOut)
	default:
		return daterange.DateRange{}, property.ErrKindNotSupported
	}
}

// IsValidationFailure reports whether the error belongs to the request
// validation family, useful for HTTP status mapping.
func IsValidationFailure(err error) bool {
	return errors.Is(err, domainbooking.ErrCapacityExceeded) ||
		errors.Is(err, domainbooking.ErrMinStayNotMet) ||
		errors.Is(err, domainbooking.ErrCheckInPast) ||
		errors.Is(err, domainbooking.ErrInvalidGuests) ||
		errors.Is(err, property.ErrKindNotSupported) ||
		errors.Is(err, daterange.ErrInvalidRange) ||
		errors.Is(err, daterange.ErrInvalidMonths)
}
