package pricing

import (
	"context"
	"errors"

	"rentora/internal/domain/promo"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
)

var (
	ErrRateUnset       = errors.New("pricing: no rate configured for the requested rental kind")
	ErrCurrencyUnset   = errors.New("pricing: currency must be defined")
	ErrInvalidDuration = errors.New("pricing: duration must be positive")
)

const (
	serviceFeePercent = 10
	taxPercent        = 5
)

// Quote is the deterministic price breakdown for a candidate booking.
// For monthly stays only the first installment is committed; the full
// contract value is disclosed alongside it.
type Quote struct {
	Kind     property.RentalKind
	Nights   int
	Months   int
	Base     money.Money
	Fee      money.Money
	Tax      money.Money
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
	// ContractValue is the disclosed cost of the whole term including
	// fee and tax; equal to Total for daily stays and undiscounted.
	ContractValue money.Money
	PromoCode     string
	PromoPercent  int64
}

type Input struct {
	Terms  property.RentalTerms
	Kind   property.RentalKind
	Range  daterange.DateRange
	Months int
	Promo  *promo.Code
}

// Calculator produces quotes; the domain implementation is pure, ports may
// wrap it with external rate sources.
type Calculator interface {
	Quote(ctx context.Context, input Input) (Quote, error)
}

// Compute builds the breakdown: base, 10% service fee, 5% tax, optional
// stacked promotional discount, all rounded half-up on whole units.
func Compute(input Input) (Quote, error) {
	var base money.Money
	q := Quote{Kind: input.Kind}

	switch input.Kind {
	case property.KindDaily:
		if input.Terms.Daily == nil {
			return Quote{}, ErrRateUnset
		}
		nights := input.Range.Nights()
		if nights <= 0 {
			return Quote{}, ErrInvalidDuration
		}
		q.Nights = nights
		base = input.Terms.Daily.NightlyRate.Multiply(int64(nights))
	case property.KindMonthly:
		if input.Terms.Monthly == nil {
			return Quote{}, ErrRateUnset
		}
		if input.Months <= 0 {
			return Quote{}, ErrInvalidDuration
		}
		q.Months = input.Months
		// Multi-month terms are charged one installment at a time.
		base = input.Terms.Monthly.MonthlyRate
	default:
		return Quote{}, ErrRateUnset
	}

	if base.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}

	q.Base = base
	q.Fee = base.Percent(serviceFeePercent)
	q.Tax = base.Percent(taxPercent)
	subtotal := base
	subtotal, _ = subtotal.Add(q.Fee)
	subtotal, _ = subtotal.Add(q.Tax)
	q.Subtotal = subtotal

	if input.Promo != nil {
		q.Discount = subtotal.Percent(input.Promo.Percent)
		q.PromoCode = input.Promo.Code
		q.PromoPercent = input.Promo.Percent
	} else {
		q.Discount = money.Money{Amount: 0, Currency: base.Currency}
	}

	total, err := subtotal.Sub(q.Discount)
	if err != nil {
		return Quote{}, err
	}
	if total.Amount < 0 {
		total = money.Money{Amount: 0, Currency: total.Currency}
	}
	q.Total = total

	q.ContractValue = contractValue(input, q)
	return q, nil
}

func contractValue(input Input, q Quote) money.Money {
	if input.Kind != property.KindMonthly {
		return q.Total
	}
	contractBase := input.Terms.Monthly.MonthlyRate.Multiply(int64(input.Months))
	value := contractBase
	value, _ = value.Add(contractBase.Percent(serviceFeePercent))
	value, _ = value.Add(contractBase.Percent(taxPercent))
	return value
}

// Engine is the pure calculator used in production wiring.
type Engine struct{}

func (Engine) Quote(ctx context.Context, input Input) (Quote, error) {
	return Compute(input)
}

var _ Calculator = Engine{}
