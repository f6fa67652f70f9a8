package availability

import (
	"context"
	"errors"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/uow"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
)

var ErrNotPropertyHost = errors.New("availability: actor does not own the property")

// BlockDatesCommand places a manual host block over a range. Blocks obey
// the same overlap rule as reservations.
type BlockDatesCommand struct {
	PropertyID string    `validate:"required"`
	HostID     string    `validate:"required"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required"`
	Reference  string    `validate:"required"`
}

func (BlockDatesCommand) Key() string { return "availability.block" }

type BlockDatesHandler struct {
	box   appoutbox.Outbox
	clock func() time.Time
}

func NewBlockDatesHandler(box appoutbox.Outbox, clock func() time.Time) *BlockDatesHandler {
	if clock == nil {
		clock = time.Now
	}
	return &BlockDatesHandler{box: box, clock: clock}
}

func (h *BlockDatesHandler) Handle(ctx context.Context, cmd BlockDatesCommand) (*dto.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	dr, err := daterange.New(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}

	prop, err := unit.Properties().ByID(ctx, property.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if string(prop.Host) != cmd.HostID {
		return nil, ErrNotPropertyHost
	}

	calendar, err := unit.Availability().Calendar(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	if err := calendar.BlockRange(dr, cmd.Reference, h.clock()); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, calendar.PendingEvents()); err != nil {
		return nil, err
	}
	calendar.ClearEvents()

	result := dto.NewCalendar(calendar, dr.CheckIn, dr.CheckOut)
	return &result, nil
}

// UnblockDatesCommand removes a host block by its reference.
type UnblockDatesCommand struct {
	PropertyID string `validate:"required"`
	HostID     string `validate:"required"`
	Reference  string `validate:"required"`
}

func (UnblockDatesCommand) Key() string { return "availability.unblock" }

type UnblockDatesHandler struct {
	box   appoutbox.Outbox
	clock func() time.Time
}

func NewUnblockDatesHandler(box appoutbox.Outbox, clock func() time.Time) *UnblockDatesHandler {
	if clock == nil {
		clock = time.Now
	}
	return &UnblockDatesHandler{box: box, clock: clock}
}

func (h *UnblockDatesHandler) Handle(ctx context.Context, cmd UnblockDatesCommand) (any, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	prop, err := unit.Properties().ByID(ctx, property.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if string(prop.Host) != cmd.HostID {
		return nil, ErrNotPropertyHost
	}
	calendar, err := unit.Availability().Calendar(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	if err := calendar.Release(cmd.Reference, h.clock()); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, calendar.PendingEvents()); err != nil {
		return nil, err
	}
	calendar.ClearEvents()
	return nil, nil
}
