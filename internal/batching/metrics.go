package batching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcome labels for lumen_batching_requests_total.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeCancelled = "cancelled"
	outcomeRejected  = "rejected"
	outcomeDiscarded = "discarded"
)

// Metrics holds the Prometheus collectors of the batching core. Queue depth
// is the signal for the unbounded-queue overload risk, since producers are
// never throttled.
type Metrics struct {
	queueDepth      prometheus.GaugeFunc
	pendingHandles  prometheus.GaugeFunc
	batchSize       prometheus.Histogram
	batchesTotal    *prometheus.CounterVec
	backendDuration prometheus.Histogram
	queueWait       prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace and registers them with
// reg. A nil reg leaves them unregistered. The depth gauges read queue and
// registry at collection time.
func NewMetrics(namespace string, reg prometheus.Registerer, queue *Queue, registry *Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		queueDepth: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "queue_depth",
			Help:      "Number of generation requests waiting for a batch",
		}, func() float64 { return float64(queue.Len()) }),
		pendingHandles: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "pending_handles",
			Help:      "Number of registered completion handles not yet taken",
		}, func() float64 { return float64(registry.Len()) }),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "batch_size",
			Help:      "Number of prompts sent to the backend per call",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}),
		batchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "batches_total",
			Help:      "Backend calls by result",
		}, []string{"result"}),
		backendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "backend_duration_seconds",
			Help:      "Duration of backend batch calls",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		queueWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "queue_wait_seconds",
			Help:      "Time requests spent queued before dispatch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batching",
			Name:      "requests_total",
			Help:      "Generation requests by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeBatch(size int, took time.Duration, err error) {
	m.batchSize.Observe(float64(size))
	m.backendDuration.Observe(took.Seconds())
	if err != nil {
		m.batchesTotal.WithLabelValues(outcomeFailure).Inc()
		return
	}
	m.batchesTotal.WithLabelValues(outcomeSuccess).Inc()
}

func (m *Metrics) observeQueueWait(d time.Duration) {
	m.queueWait.Observe(d.Seconds())
}

func (m *Metrics) observeRequest(outcome string) {
	m.requestsTotal.WithLabelValues(outcome).Inc()
}
