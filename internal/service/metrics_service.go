package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the messaging pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	inboundTotal    *prometheus.CounterVec
	slotComputeTime prometheus.Observer
	slotCacheHits   prometheus.Counter
	slotCacheMisses prometheus.Counter
	webhookFailures *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	inboundTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsapp_inbound_messages_total",
		Help: "Inbound WhatsApp messages processed, labelled by resolved intent",
	}, []string{"intent"})

	slotComputeTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "slot_compute_duration_seconds",
		Help:    "Time spent computing availability slots",
		Buckets: prometheus.DefBuckets,
	})

	slotCacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slot_cache_hits_total",
		Help: "Slot computations served from cache",
	})

	slotCacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slot_cache_misses_total",
		Help: "Slot computations that went to the database",
	})

	webhookFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_failures_total",
		Help: "Webhook deliveries rejected or failed, labelled by source",
	}, []string{"source"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, inboundTotal, slotComputeTime, slotCacheHits, slotCacheMisses, webhookFailures, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		inboundTotal:    inboundTotal,
		slotComputeTime: slotComputeTime,
		slotCacheHits:   slotCacheHits,
		slotCacheMisses: slotCacheMisses,
		webhookFailures: webhookFailures,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveInboundMessage counts one processed inbound message.
func (m *MetricsService) ObserveInboundMessage(intent string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(intent).Inc()
}

// ObserveSlotComputation records a slot computation and its cache outcome.
func (m *MetricsService) ObserveSlotComputation(cached bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.slotComputeTime.Observe(duration.Seconds())
	if cached {
		m.slotCacheHits.Inc()
	} else {
		m.slotCacheMisses.Inc()
	}
}

// ObserveWebhookFailure counts a rejected or failed webhook delivery.
func (m *MetricsService) ObserveWebhookFailure(source string) {
	if m == nil {
		return
	}
	m.webhookFailures.WithLabelValues(source).Inc()
}
