package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout results used as the "result" label.
const (
	CheckoutResultSuccess      = "success"
	CheckoutResultEmptyCart    = "empty_cart"
	CheckoutResultInsufficient = "insufficient_stock"
	CheckoutResultConflict     = "stock_conflict"
	CheckoutResultInvalid      = "invalid"
	CheckoutResultError        = "error"
)

var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_checkouts_total",
		Help: "Checkout attempts by result",
	}, []string{"result"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pharmacy_checkout_latency_seconds",
		Help:    "Latency of the checkout transaction",
		Buckets: prometheus.DefBuckets,
	})

	OrderRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pharmacy_order_revenue_total",
		Help: "Sum of placed order totals",
	})

	StockConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_stock_conflicts_total",
		Help: "Stock shortfalls detected, by phase (precheck or locked)",
	}, []string{"phase"})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_cart_operations_total",
		Help: "Cart mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_order_status_changes_total",
		Help: "Order status changes made from the back-office",
	}, []string{"to"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_events_published_total",
		Help: "Order events published to Kafka",
	}, []string{"event_type", "outcome"})

	CategoryCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacy_category_cache_total",
		Help: "Category cache lookups by outcome",
	}, []string{"outcome"})

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
