// Package market holds the offer selection policy and the
// cross-currency conversion engine
package market

import (
	"fmt"

	"github.com/birrdesk/etbrates/market/types"
)

// ConservativeRankOffset is the rank of the offer used as the
// execution-rate estimate. The first several offers are deliberately
// skipped: top-of-book prices tend to come from low-liquidity or
// otherwise non-representative advertisers
const ConservativeRankOffset = 5

// TopN returns the first n offers in provider order, or all of them
// when fewer exist. The provider's ranking is never altered; a
// non-positive n yields an empty list
func TopN(offers []types.Offer, n int) []types.Offer {
	if n < 0 {
		n = 0
	}

	if n > len(offers) {
		n = len(offers)
	}

	return offers[:n]
}

// ConservativeOffer returns the offer ranked skip places below the
// best price. Fails when the book is too shallow
func ConservativeOffer(offers []types.Offer, skip int) (types.Offer, error) {
	if len(offers) < skip+1 {
		return types.Offer{}, fmt.Errorf(
			"%w: need %d offers, have %d",
			types.ErrInsufficientOffers,
			skip+1,
			len(offers),
		)
	}

	return offers[skip], nil
}
