package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Requests
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roku_bridge_requests_total",
		Help: "Voice requests handled, by request model and outcome",
	}, []string{"model", "outcome"})

	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roku_bridge_request_latency_seconds",
		Help:    "Time spent handling a voice request",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	// Broker
	PublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roku_bridge_publishes_total",
		Help: "Commands published to the broker, by status",
	}, []string{"status"})

	PublishLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roku_bridge_publish_latency_seconds",
		Help:    "Broker publish round-trip time",
		Buckets: prometheus.DefBuckets,
	})

	BrokerConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roku_bridge_broker_connected",
		Help: "1 while the broker connection is up",
	})
)
