package pricing

import (
	"context"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	"rentora/internal/app/support"
	"rentora/internal/app/uow"
	domainpricing "rentora/internal/domain/pricing"
	"rentora/internal/domain/promo"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
)

// QuotePriceQuery prices a candidate stay without creating anything.
type QuotePriceQuery struct {
	PropertyID string `validate:"required"`
	GuestID    string
	Kind       string    `validate:"required,oneof=DAILY MONTHLY"`
	CheckIn    time.Time `validate:"required"`
	CheckOut   time.Time
	Months     int
	PromoCode  string
}

func (QuotePriceQuery) Key() string { return "pricing.quote" }

type QuotePriceHandler struct {
	factory uow.UoWFactory
	calc    domainpricing.Calculator
	log     *slog.Logger
	clock   func() time.Time
}

func NewQuotePriceHandler(factory uow.UoWFactory, calc domainpricing.Calculator, log *slog.Logger, clock func() time.Time) *QuotePriceHandler {
	if clock == nil {
		clock = time.Now
	}
	return &QuotePriceHandler{factory: factory, calc: calc, log: log, clock: clock}
}

func (h *QuotePriceHandler) Handle(ctx context.Context, q QuotePriceQuery) (*dto.Quote, error) {
	kind := property.RentalKind(q.Kind)
	var dr daterange.DateRange
	var err error
	switch kind {
	case property.KindMonthly:
		dr, err = daterange.NewMonths(q.CheckIn, q.Months)
	default:
		dr, err = daterange.New(q.CheckIn, q.CheckOut)
	}
	if err != nil {
		return nil, err
	}

	var out *dto.Quote
	err = support.WithReadOnlyUnit(ctx, h.factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		prop, err := unit.Properties().ByID(ctx, property.PropertyID(q.PropertyID))
		if err != nil {
			return err
		}

		var code *promo.Code
		if q.PromoCode != "" {
			resolved, err := unit.Promos().Resolve(ctx, q.PromoCode, q.GuestID, dr)
			switch {
			case err != nil:
				h.log.Warn("promo ignored for quote", slog.String("code", q.PromoCode), slog.Any("error", err))
			case resolved.Expired(h.clock()):
				h.log.Warn("expired promo ignored for quote", slog.String("code", q.PromoCode))
			default:
				code = &resolved
			}
		}

		quote, err := h.calc.Quote(ctx, domainpricing.Input{
			Terms:  prop.Terms,
			Kind:   kind,
			Range:  dr,
			Months: q.Months,
			Promo:  code,
		})
		if err != nil {
			return err
		}
		result := dto.NewQuote(quote)
		out = &result
		return nil
	})
	return out, err
}
