package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	// Бизнес-метрики
	BookingsCreatedTotal  *prometheus.CounterVec
	BookingRejectedTotal  *prometheus.CounterVec
	TravelFallbackTotal   *prometheus.CounterVec
	AvailabilityRequested *prometheus.CounterVec
	OutboxPublishedTotal  *prometheus.CounterVec
}

// New создает и регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "status"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{}),
		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections in use",
			ConstLabels: constLabels,
		}, []string{}),
		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{}),
		BookingsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Total number of created bookings",
			ConstLabels: constLabels,
		}, []string{"mode", "home_visit"}),
		BookingRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_rejected_total",
			Help:        "Total number of rejected booking attempts by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		TravelFallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "travel_calculator_fallback_total",
			Help:        "Number of times travel data degraded to zero figures",
			ConstLabels: constLabels,
		}, []string{}),
		AvailabilityRequested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "availability_requests_total",
			Help:        "Availability requests by evaluation mode",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		OutboxPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "outbox_events_published_total",
			Help:        "Outbox events published to kafka",
			ConstLabels: constLabels,
		}, []string{"event_type"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingsCreatedTotal,
		m.BookingRejectedTotal,
		m.TravelFallbackTotal,
		m.AvailabilityRequested,
		m.OutboxPublishedTotal,
	)

	return m
}

// BookingCreated увеличивает счетчик созданных бронирований. Безопасен для nil.
func (m *Metrics) BookingCreated(mode string, homeVisit bool) {
	if m == nil {
		return
	}
	hv := "false"
	if homeVisit {
		hv = "true"
	}
	m.BookingsCreatedTotal.WithLabelValues(mode, hv).Inc()
}

// BookingRejected увеличивает счетчик отклоненных бронирований. Безопасен для nil.
func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.BookingRejectedTotal.WithLabelValues(reason).Inc()
}

// TravelFallback фиксирует деградацию расчета поездки. Безопасен для nil.
func (m *Metrics) TravelFallback() {
	if m == nil {
		return
	}
	m.TravelFallbackTotal.WithLabelValues().Inc()
}

// AvailabilityRequest фиксирует запрос доступности. Безопасен для nil.
func (m *Metrics) AvailabilityRequest(mode string) {
	if m == nil {
		return
	}
	m.AvailabilityRequested.WithLabelValues(mode).Inc()
}

// OutboxPublished фиксирует опубликованное событие. Безопасен для nil.
func (m *Metrics) OutboxPublished(eventType string) {
	if m == nil {
		return
	}
	m.OutboxPublishedTotal.WithLabelValues(eventType).Inc()
}
