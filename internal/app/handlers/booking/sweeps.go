package booking

import (
	"context"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
)

// SweepAbandonedPaymentsCommand cancels bookings stuck in PAYMENT_PENDING
// longer than the configured timeout and frees their calendar days.
type SweepAbandonedPaymentsCommand struct {
	Timeout time.Duration `validate:"required,gt=0"`
}

func (SweepAbandonedPaymentsCommand) Key() string { return "booking.sweep_payments" }

type SweepAbandonedPaymentsHandler struct {
	box   appoutbox.Outbox
	log   *slog.Logger
	clock func() time.Time
}

func NewSweepAbandonedPaymentsHandler(box appoutbox.Outbox, log *slog.Logger, clock func() time.Time) *SweepAbandonedPaymentsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SweepAbandonedPaymentsHandler{box: box, log: log, clock: clock}
}

func (h *SweepAbandonedPaymentsHandler) Handle(ctx context.Context, cmd SweepAbandonedPaymentsCommand) (*dto.SweepReport, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()
	cutoff := now.Add(-cmd.Timeout)

	stale, err := unit.Bookings().ListByState(ctx, domainbooking.StatePaymentPending, cutoff)
	if err != nil {
		return nil, err
	}

	report := &dto.SweepReport{}
	for _, b := range stale {
		if err := b.Expire("payment window elapsed", now); err != nil {
			h.log.Warn("skip stale booking", slog.String("booking_id", string(b.ID)), slog.Any("error", err))
			continue
		}
		if err := unit.Reservations().Release(ctx, b); err != nil {
			return nil, err
		}
		if b.Quote.PromoCode != "" {
			if err := unit.Promos().ReleaseRedemption(ctx, b.Quote.PromoCode, b.GuestID, string(b.ID)); err != nil {
				return nil, err
			}
		}
		if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
			return nil, err
		}
		b.ClearEvents()
		report.Processed++
	}
	return report, nil
}

// SweepFinishedStaysCommand completes confirmed or checked-in bookings
// whose check-out date has passed.
type SweepFinishedStaysCommand struct{}

func (SweepFinishedStaysCommand) Key() string { return "booking.sweep_completions" }

type SweepFinishedStaysHandler struct {
	box   appoutbox.Outbox
	log   *slog.Logger
	clock func() time.Time
}

func NewSweepFinishedStaysHandler(box appoutbox.Outbox, log *slog.Logger, clock func() time.Time) *SweepFinishedStaysHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SweepFinishedStaysHandler{box: box, log: log, clock: clock}
}

func (h *SweepFinishedStaysHandler) Handle(ctx context.Context, cmd SweepFinishedStaysCommand) (*dto.SweepReport, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()

	report := &dto.SweepReport{}
	for _, state := range []domainbooking.BookingState{domainbooking.StateConfirmed, domainbooking.StateCheckedIn} {
		candidates, err := unit.Bookings().ListByState(ctx, state, now)
		if err != nil {
			return nil, err
		}
		for _, b := range candidates {
			if now.Before(b.Range.CheckOut) {
				continue
			}
			if err := b.Complete(now); err != nil {
				h.log.Warn("skip completion", slog.String("booking_id", string(b.ID)), slog.Any("error", err))
				continue
			}
			if err := unit.Bookings().Save(ctx, b); err != nil {
				return nil, err
			}
			if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
				return nil, err
			}
			b.ClearEvents()
			report.Processed++
		}
	}
	return report, nil
}
