package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// CandidatePrice computes the discounted price a single promotion yields
// for basePrice at the given instant. The second return is false when the
// promotion is not active at now (including inverted date windows, which
// never match the literal check).
func CandidatePrice(basePrice decimal.Decimal, promo models.Promotion, now time.Time) (decimal.Decimal, bool) {
	if now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return decimal.Zero, false
	}

	var discount decimal.Decimal
	switch promo.DiscountType {
	case models.DiscountTypePercent:
		discount = basePrice.Mul(promo.DiscountValue).Div(oneHundred)
	case models.DiscountTypeAmount:
		discount = promo.DiscountValue
	default:
		return decimal.Zero, false
	}

	price := basePrice.Sub(discount)
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price, true
}

// BestPrice returns the lowest discounted price any promotion active at
// now yields for basePrice. The second return is false when no promotion
// is active; callers charge the base price and surface a null discount.
// Ties keep the first candidate in input order.
func BestPrice(basePrice decimal.Decimal, promos []models.Promotion, now time.Time) (decimal.Decimal, bool) {
	best := decimal.Zero
	found := false

	for _, promo := range promos {
		candidate, ok := CandidatePrice(basePrice, promo, now)
		if !ok {
			continue
		}
		if !found || candidate.LessThan(best) {
			best = candidate
			found = true
		}
	}

	return best, found
}
