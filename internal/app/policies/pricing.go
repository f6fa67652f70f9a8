package policies

import "rentora/internal/domain/pricing"

// PriceCalculator quotes a stay. The domain engine is the production implementation.
type PriceCalculator interface {
	Compute(in pricing.Input) (pricing.Quote, error)
}
