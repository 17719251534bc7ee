package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrderCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_create_latency_seconds",
		Help:    "Latency of the order creation transaction",
		Buckets: prometheus.DefBuckets,
	})

	PaymentRedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_redirects_total",
		Help: "Total number of payment redirect URLs issued",
	}, []string{"method"})

	ProductReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_reads_total",
		Help: "Total number of single-product catalog reads",
	})

	DiscountEvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_evaluations_total",
		Help: "Total number of best-discount evaluations",
	})

	DiscountsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discounts_applied_total",
		Help: "Total number of reads where an active promotion lowered the price",
	})

	CatalogCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of product aggregate cache hits",
	})

	CatalogCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of product aggregate cache misses",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
