package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts HTTP requests by route template, method and status code
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketgate_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"route", "method", "code"},
	)

	// RequestDuration records handler latency by route template
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucketgate_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// UploadItemsTotal counts stored and failed files.
	// mode: single/batch, status: succeeded/failed
	UploadItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketgate_upload_items_total",
			Help: "Total number of files processed by upload operations.",
		},
		[]string{"mode", "status"},
	)

	// BatchUploadDuration records the time until every file of a batch settled
	BatchUploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucketgate_batch_upload_duration_seconds",
			Help:    "Time from dispatch until all files of a batch upload settled.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// SignedURLsTotal counts signing attempts by status
	SignedURLsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketgate_signed_urls_total",
			Help: "Total number of signed URLs requested.",
		},
		[]string{"mode", "status"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(UploadItemsTotal)
	prometheus.MustRegister(BatchUploadDuration)
	prometheus.MustRegister(SignedURLsTotal)
}
