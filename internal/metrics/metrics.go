package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/notification"
	"github.com/ricirt/breed-query-worker/internal/queue"
	"github.com/ricirt/breed-query-worker/internal/worker"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	MessagesReceived    prometheus.Counter
	MessagesMalformed   prometheus.Counter
	RequestsProcessed   *prometheus.CounterVec
	ProcessingLatency   *prometheus.HistogramVec
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	DeleteFailures      prometheus.Counter
	PollErrors          prometheus.Counter
	QueueDepthVisible   prometheus.Gauge
	QueueDepthInFlight  prometheus.Gauge
	RequestsEnqueued    *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_messages_received_total",
			Help: "Messages received from the work queue.",
		}),
		MessagesMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_messages_malformed_total",
			Help: "Messages discarded because the body did not decode.",
		}),
		RequestsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breed_requests_processed_total",
			Help: "Requests that reached a terminal state, by type and outcome.",
		}, []string{"request_type", "outcome"}),
		ProcessingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breed_request_processing_seconds",
			Help:    "Processing latency from dispatch to notification handoff.",
			Buckets: prometheus.DefBuckets,
		}, []string{"request_type"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications accepted by the email transport.",
		}, []string{"kind"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Notifications the email transport rejected.",
		}, []string{"kind"}),
		DeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_delete_failures_total",
			Help: "Message deletes that failed after processing.",
		}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_poll_errors_total",
			Help: "Poll cycles ended early by a transport error.",
		}),
		QueueDepthVisible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_visible",
			Help: "Approximate number of messages waiting to be received.",
		}),
		QueueDepthInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_in_flight",
			Help: "Approximate number of received messages not yet deleted.",
		}),
		RequestsEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breed_requests_enqueued_total",
			Help: "Requests accepted by the intake API and sent to the queue.",
		}, []string{"request_type"}),
	}

	reg.MustRegister(
		m.MessagesReceived,
		m.MessagesMalformed,
		m.RequestsProcessed,
		m.ProcessingLatency,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.DeleteFailures,
		m.PollErrors,
		m.QueueDepthVisible,
		m.QueueDepthInFlight,
		m.RequestsEnqueued,
	)

	return m
}

// WorkerHooks returns the callbacks expected by worker.MetricHooks.
// Centralises the prometheus observation calls so the worker stays import-free.
func (m *Metrics) WorkerHooks() worker.MetricHooks {
	return worker.MetricHooks{
		OnReceived:  func(n int) { m.MessagesReceived.Add(float64(n)) },
		OnMalformed: m.MessagesMalformed.Inc,
		OnProcessed: func(t domain.RequestType, o worker.Outcome, latency time.Duration) {
			m.RequestsProcessed.WithLabelValues(string(t), string(o)).Inc()
			m.ProcessingLatency.WithLabelValues(string(t)).Observe(latency.Seconds())
		},
		OnNotification: func(k notification.Kind, err error) {
			if err != nil {
				m.NotificationsFailed.WithLabelValues(string(k)).Inc()
				return
			}
			m.NotificationsSent.WithLabelValues(string(k)).Inc()
		},
		OnDeleteFailed: m.DeleteFailures.Inc,
		OnPollError:    m.PollErrors.Inc,
		OnDepth: func(d queue.Depth) {
			m.QueueDepthVisible.Set(float64(d.Visible))
			m.QueueDepthInFlight.Set(float64(d.InFlight))
		},
	}
}

// OnEnqueued records an accepted intake request.
func (m *Metrics) OnEnqueued(t domain.RequestType) {
	m.RequestsEnqueued.WithLabelValues(string(t)).Inc()
}
