package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealership_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealership_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QuotesCalculated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealership_finance_quotes_total",
			Help: "Total number of financing quotes by outcome",
		},
		[]string{"result"},
	)

	QuoteCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealership_finance_quote_cache_lookups_total",
			Help: "Quote cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RateSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealership_finance_rate_source_total",
			Help: "Where the interest rate of a quote came from (request, feed, default)",
		},
		[]string{"source"},
	)

	ApplicationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealership_finance_applications_created_total",
			Help: "Total number of finance applications submitted",
		},
	)

	LowStockParts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dealership_parts_low_stock",
			Help: "Number of parts below their minimum stock level at the last scan",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealership_emails_total",
			Help: "Outgoing emails by kind and result",
		},
		[]string{"kind", "result"},
	)
)
