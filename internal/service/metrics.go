package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsCollector struct {
	purchaseSuccess     *prometheus.CounterVec
	purchaseFailed      *prometheus.CounterVec
	otpDelivered        *prometheus.CounterVec
	otpUnmatched        prometheus.Counter
	webhookUnauthorized prometheus.Counter
	deliveryLatency     prometheus.Histogram
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		purchaseSuccess: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_purchase_success_total",
				Help: "Total number of successful number purchases",
			},
			[]string{"service"},
		),
		purchaseFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_purchase_failed_total",
				Help: "Total number of failed number purchases",
			},
			[]string{"service", "reason"},
		),
		otpDelivered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_otp_delivered_total",
				Help: "Total number of OTP codes routed to an order",
			},
			[]string{"source"},
		),
		otpUnmatched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketplace_otp_unmatched_total",
				Help: "Total number of OTP deliveries with no pending order",
			},
		),
		webhookUnauthorized: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketplace_webhook_unauthorized_total",
				Help: "Total number of webhook calls rejected for a bad secret",
			},
		),
		deliveryLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketplace_otp_delivery_latency_seconds",
				Help:    "Time from order creation to OTP delivery",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

func (m *MetricsCollector) IncrementPurchaseSuccess(service string) {
	m.purchaseSuccess.WithLabelValues(service).Inc()
}

func (m *MetricsCollector) IncrementPurchaseFailed(service, reason string) {
	m.purchaseFailed.WithLabelValues(service, reason).Inc()
}

func (m *MetricsCollector) IncrementOTPDelivered(source string) {
	m.otpDelivered.WithLabelValues(source).Inc()
}

func (m *MetricsCollector) IncrementOTPUnmatched() {
	m.otpUnmatched.Inc()
}

func (m *MetricsCollector) IncrementWebhookUnauthorized() {
	m.webhookUnauthorized.Inc()
}

func (m *MetricsCollector) RecordDeliveryLatency(seconds float64) {
	m.deliveryLatency.Observe(seconds)
}
