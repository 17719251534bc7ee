package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
	"storefront-service/internal/uuidcodec"
)

func promo(discountType string, value int64, start, end time.Time) models.Promotion {
	return models.Promotion{
		ID:            uuidcodec.New(),
		Name:          "test promo",
		DiscountType:  discountType,
		DiscountValue: decimal.NewFromInt(value),
		StartDate:     start,
		EndDate:       end,
	}
}

func TestBestPricePicksLowestCandidate(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	promos := []models.Promotion{
		promo(models.DiscountTypePercent, 10, now.Add(-time.Hour), now.Add(time.Hour)),
		promo(models.DiscountTypeAmount, 5000, now.Add(-time.Hour), now.Add(time.Hour)),
	}

	best, ok := BestPrice(base, promos, now)
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.NewFromInt(90000)), "got %s", best)
}

func TestBestPriceIgnoresExpiredPromotions(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	promos := []models.Promotion{
		promo(models.DiscountTypePercent, 10, now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
	}

	_, ok := BestPrice(base, promos, now)
	assert.False(t, ok)
}

func TestBestPriceIgnoresFuturePromotions(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	promos := []models.Promotion{
		promo(models.DiscountTypeAmount, 5000, now.Add(time.Hour), now.Add(2*time.Hour)),
	}

	_, ok := BestPrice(base, promos, now)
	assert.False(t, ok)
}

func TestBestPriceClampsToZero(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	promos := []models.Promotion{
		promo(models.DiscountTypePercent, 150, now.Add(-time.Hour), now.Add(time.Hour)),
	}

	best, ok := BestPrice(base, promos, now)
	require.True(t, ok)
	assert.True(t, best.IsZero(), "got %s", best)

	promos = []models.Promotion{
		promo(models.DiscountTypeAmount, 200000, now.Add(-time.Hour), now.Add(time.Hour)),
	}

	best, ok = BestPrice(base, promos, now)
	require.True(t, ok)
	assert.True(t, best.IsZero(), "got %s", best)
}

func TestBestPriceInvertedWindowNeverActive(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	// start after end: the literal window check never matches
	promos := []models.Promotion{
		promo(models.DiscountTypePercent, 50, now.Add(time.Hour), now.Add(-time.Hour)),
	}

	_, ok := BestPrice(base, promos, now)
	assert.False(t, ok)
}

func TestBestPriceTieKeepsFirstInInputOrder(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(100000)

	first := promo(models.DiscountTypePercent, 10, now.Add(-time.Hour), now.Add(time.Hour))
	second := promo(models.DiscountTypeAmount, 10000, now.Add(-time.Hour), now.Add(time.Hour))

	best, ok := BestPrice(base, []models.Promotion{first, second}, now)
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.NewFromInt(90000)))

	// Same inputs, same instant: identical output.
	again, ok := BestPrice(base, []models.Promotion{first, second}, now)
	require.True(t, ok)
	assert.True(t, best.Equal(again))
}

func TestBestPriceBoundaryInstantsInclusive(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	base := decimal.NewFromInt(50000)

	p := promo(models.DiscountTypeAmount, 5000, now, now.Add(time.Hour))

	best, ok := BestPrice(base, []models.Promotion{p}, now)
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.NewFromInt(45000)))

	best, ok = BestPrice(base, []models.Promotion{p}, now.Add(time.Hour))
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.NewFromInt(45000)))
}

func TestCandidatePriceUnknownTypeInactive(t *testing.T) {
	now := time.Now()
	p := promo("BOGOF", 10, now.Add(-time.Hour), now.Add(time.Hour))

	_, ok := CandidatePrice(decimal.NewFromInt(1000), p, now)
	assert.False(t, ok)
}

func TestBestPriceFractionalPercent(t *testing.T) {
	now := time.Now()
	base := decimal.NewFromInt(99999)

	p := promo(models.DiscountTypePercent, 0, now.Add(-time.Hour), now.Add(time.Hour))
	p.DiscountValue = decimal.RequireFromString("12.5")

	best, ok := BestPrice(base, []models.Promotion{p}, now)
	require.True(t, ok)
	assert.True(t, best.Equal(decimal.RequireFromString("87499.125")), "got %s", best)
}
