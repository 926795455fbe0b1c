// README: Pricing configuration for fare estimation.
package fare

import "cabcab/internal/types"

// Pricing holds the tunable fare constants. They are injected rather than
// compiled in so deployments (and tests) can vary them.
type Pricing struct {
	Base        types.Money
	PerKm       types.Money
	PerMinute   types.Money
	Minimum     types.Money
	AvgSpeedKmh float64
}

func DefaultPricing() Pricing {
	return Pricing{
		Base:        types.Cents(250),
		PerKm:       types.Cents(125),
		PerMinute:   types.Cents(35),
		Minimum:     types.Cents(500),
		AvgSpeedKmh: 30,
	}
}
