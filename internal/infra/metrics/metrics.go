package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "facility_booking"

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Count of reservations committed as pending.",
		},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Count of reservation status transitions by target status.",
		},
		[]string{"to"},
	)

	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_rejections_total",
			Help:      "Count of creation attempts rejected by a conflict or quota guard.",
		},
		[]string{"reason"},
	)

	refundIntents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_intents_total",
			Help:      "Count of refund requests emitted.",
		},
	)

	intentPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_publish_failures_total",
			Help:      "Count of side-effect intents that could not be handed off.",
		},
		[]string{"kind"},
	)

	sweepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_transitions_total",
			Help:      "Count of reservations moved by periodic sweeps.",
		},
		[]string{"sweep"},
	)

	createDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reservation_create_duration_seconds",
			Help:      "Latency of the reservation creation transaction.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP latency by route template, method and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationsCreated,
			transitions,
			rejections,
			refundIntents,
			intentPublishFailures,
			sweepTransitions,
			createDuration,
			httpRequests,
		)
	})
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncTransition(to string) {
	transitions.WithLabelValues(to).Inc()
}

func IncRejection(reason string) {
	rejections.WithLabelValues(reason).Inc()
}

func IncRefundIntent() {
	refundIntents.Inc()
}

func IncIntentPublishFailure(kind string) {
	intentPublishFailures.WithLabelValues(kind).Inc()
}

func IncSweepTransition(sweep string) {
	sweepTransitions.WithLabelValues(sweep).Inc()
}

func ObserveCreateDuration(d time.Duration) {
	createDuration.Observe(d.Seconds())
}

// ObserveHTTPRequest labels by route template, never by raw path, to keep cardinality bounded.
func ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}
