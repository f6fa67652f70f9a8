package availability

import (
	"context"
	"time"

	"rentora/internal/app/dto"
	"rentora/internal/app/support"
	"rentora/internal/app/uow"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
)

// GetCalendarQuery returns the blocked dates of a property inside [From, To).
type GetCalendarQuery struct {
	PropertyID string    `validate:"required"`
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required"`
}

func (GetCalendarQuery) Key() string { return "availability.calendar" }

type GetCalendarHandler struct {
	factory uow.UoWFactory
}

func NewGetCalendarHandler(factory uow.UoWFactory) *GetCalendarHandler {
	return &GetCalendarHandler{factory: factory}
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*dto.Calendar, error) {
	window := daterange.DateRange{CheckIn: daterange.Day(q.From), CheckOut: daterange.Day(q.To)}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	var out *dto.Calendar
	err := support.WithReadOnlyUnit(ctx, h.factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Properties().ByID(ctx, property.PropertyID(q.PropertyID)); err != nil {
			return err
		}
		calendar, err := unit.Availability().Calendar(ctx, property.PropertyID(q.PropertyID))
		if err != nil {
			return err
		}
		result := dto.NewCalendar(calendar, window.CheckIn, window.CheckOut)
		out = &result
		return nil
	})
	return out, err
}
