package booking

import (
	"fmt"

	"slotwise/models"
)

// Default per-duration session prices in cents, used when a provider has not
// configured a rate for the duration.
var defaultRates = map[int]int64{
	15: 1500,
	30: 2500,
	60: 4500,
}

// PriceFor returns the session price in cents for the given duration, from
// the provider's rate table with package defaults as fallback.
func PriceFor(p *models.Provider, durationMinutes int) int64 {
	if p != nil && p.Rates != nil {
		if rate, ok := p.Rates[fmt.Sprintf("%d", durationMinutes)]; ok && rate > 0 {
			return rate
		}
	}
	return defaultRates[durationMinutes]
}

// Split divides a price into the platform fee and the provider share using
// the fixed platform percentage. The provider share absorbs rounding.
func Split(priceCents int64, feePercent int) (platformFee, providerShare int64) {
	platformFee = priceCents * int64(feePercent) / 100
	providerShare = priceCents - platformFee
	return platformFee, providerShare
}
