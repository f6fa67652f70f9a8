package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/policies"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
)

type PaymentMethod string

const (
	MethodCard PaymentMethod = "CARD"
	MethodCash PaymentMethod = "CASH"
)

var (
	ErrNotBookingOwner = errors.New("booking: actor is not the booking guest")
	ErrUnknownMethod   = errors.New("booking: unknown payment method")
)

// ConfirmBookingCommand moves a SUMMARY booking forward. Card payments go
// through the gateway and land in PAYMENT_PENDING with a redirect URL;
// cash stays confirm immediately. In both cases the calendar reservation
// is committed here, atomically, so racing confirmations cannot overbook.
type ConfirmBookingCommand struct {
	BookingID  string `validate:"required"`
	Actor      string `validate:"required"`
	Method     string `validate:"required,oneof=CARD CASH"`
	RequestKey string
}

func (ConfirmBookingCommand) Key() string { return "booking.confirm" }

func (c ConfirmBookingCommand) IdempotencyKey() string { return c.RequestKey }

func (c ConfirmBookingCommand) ResultPrototype() any { return &dto.ConfirmResult{} }

type ConfirmBookingHandler struct {
	gateway policies.PaymentGateway
	box     appoutbox.Outbox
	log     *slog.Logger
	clock   func() time.Time
}

func NewConfirmBookingHandler(gateway policies.PaymentGateway, box appoutbox.Outbox, log *slog.Logger, clock func() time.Time) *ConfirmBookingHandler {
	if clock == nil {
		clock = time.Now
	}
	return &ConfirmBookingHandler{gateway: gateway, box: box, log: log, clock: clock}
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*dto.ConfirmResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != cmd.Actor {
		return nil, ErrNotBookingOwner
	}

	var redirect string
	switch PaymentMethod(cmd.Method) {
	case MethodCard:
		// Check the calendar before opening a gateway session; a lost
		// race should not leave an abandoned charge behind.
		calendar, err := unit.Availability().Calendar(ctx, b.PropertyID)
		if err != nil {
			return nil, err
		}
		if !calendar.CanReserve(b.Range) {
			return nil, domainbooking.ErrConflict
		}
		initiation, err := h.gateway.Initiate(ctx, b.Quote.Total, map[string]string{
			"booking_id":  string(b.ID),
			"property_id": string(b.PropertyID),
			"guest_id":    b.GuestID,
		})
		if err != nil {
			return nil, err
		}
		if err := b.InitiatePayment(initiation.TransactionRef, cmd.Actor, now); err != nil {
			return nil, err
		}
		redirect = initiation.RedirectURL
	case MethodCash:
		if err := b.ConfirmCash(cmd.Actor, now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownMethod
	}

	// Reserve re-runs the conflict check against the live calendar and
	// persists the booking in the same atomic step.
	if err := unit.Reservations().Reserve(ctx, b); err != nil {
		return nil, err
	}

	if b.Quote.PromoCode != "" {
		if err := unit.Promos().Redeem(ctx, b.Quote.PromoCode, b.GuestID, string(b.ID), b.Range); err != nil {
			return nil, err
		}
	}

	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	return &dto.ConfirmResult{Booking: dto.NewBooking(b), RedirectURL: redirect}, nil
}
