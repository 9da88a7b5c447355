package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "propzy"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ModerationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_moderation_operations_total",
			Help: "Listing moderation and categorization operations",
		},
		[]string{"operation"},
	)

	ListingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_listings_created_total",
			Help: "Listings created, by initial moderation status",
		},
		[]string{"status"},
	)

	AssetUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_asset_uploads_total",
			Help: "Media uploads to the asset host",
		},
		[]string{"kind", "result"},
	)

	EnquiriesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_enquiries_submitted_total",
			Help: "Public enquiries, by inferred source",
		},
		[]string{"source"},
	)

	EnquiryStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_enquiry_status_changes_total",
			Help: "Admin enquiry status updates, by target status",
		},
		[]string{"status"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Login attempts, by result",
		},
		[]string{"kind", "result"},
	)
)

// TrackDBOperation returns a function that records the duration of a database operation.
//
//	defer metrics.TrackDBOperation("listings.list")(time.Now())
func TrackDBOperation(operation string) func(start time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func RecordModeration(operation string) {
	ModerationOperations.WithLabelValues(operation).Inc()
}
