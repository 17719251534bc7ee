package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront-service/internal/models"
	"storefront-service/internal/pricing"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/uuidcodec"
)

// CatalogService assembles product aggregates and resolves the effective
// discounted price at read time. discount_price is never persisted, so two
// reads of the same product may differ as promotions start and end.
type CatalogService struct {
	store  *store.Store
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service. cache may be nil.
func NewCatalogService(store *store.Store, cache *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetProduct loads one product with its images, sizes, and promotions,
// then resolves the best active discount against the current instant.
func (s *CatalogService) GetProduct(ctx context.Context, id uuidcodec.ID) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	util.ProductReadsTotal.Inc()

	product, err := s.loadAggregate(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementProductViews(ctx, id); err != nil {
		s.logger.Warn("Failed to increment product views",
			zap.String("product_id", id.String()),
			zap.Error(err))
	}

	s.applyDiscount(product, time.Now())
	return product, nil
}

// ListProducts loads a filtered, sorted product page. A single instant is
// captured for the whole batch so every item in one response reflects the
// same promotion state.
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter, sortBy, sortOrder string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.store.ListProducts(ctx, filter, sortBy, sortOrder)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range products {
		if err := s.attachRelations(ctx, &products[i]); err != nil {
			return nil, err
		}
		s.applyDiscount(&products[i], now)
	}

	return products, nil
}

// loadAggregate returns the cached pre-discount aggregate when present,
// otherwise assembles it from storage and caches the result.
func (s *CatalogService) loadAggregate(ctx context.Context, id uuidcodec.ID) (*models.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProduct(ctx, id)
		if err == nil {
			util.CatalogCacheHitsTotal.Inc()
			return cached, nil
		}
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logger.Warn("Product cache read failed",
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
		util.CatalogCacheMissesTotal.Inc()
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(ctx, product); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product); err != nil {
			s.logger.Warn("Product cache write failed",
				zap.String("product_id", id.String()),
				zap.Error(err))
		}
	}

	return product, nil
}

func (s *CatalogService) attachRelations(ctx context.Context, product *models.Product) error {
	images, err := s.store.GetProductImages(ctx, product.ID)
	if err != nil {
		return err
	}
	product.Images = images

	sizes, err := s.store.GetProductSizes(ctx, product.ID)
	if err != nil {
		return err
	}
	product.Sizes = sizes

	promos, err := s.store.GetPromotionsByProductID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.Promotions = promos

	return nil
}

// applyDiscount resolves the best active promotion at now. No active
// promotion leaves DiscountPrice nil, which is distinct from a promotion
// that happens to reduce the price to exactly the base price.
func (s *CatalogService) applyDiscount(product *models.Product, now time.Time) {
	util.DiscountEvaluationsTotal.Inc()

	best, ok := pricing.BestPrice(product.Price, product.Promotions, now)
	if !ok {
		product.DiscountPrice = nil
		return
	}

	product.DiscountPrice = &best
	util.DiscountsAppliedTotal.Inc()
}
