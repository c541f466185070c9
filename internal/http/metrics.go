// Package http provides the HTML pages, JSON API, and operational endpoints of
// the fuel price tracker.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBOperationsTotal *prometheus.CounterVec

	// Statistics published by the scheduler
	RecordsStored   prometheus.Gauge
	StationsStored  prometheus.Gauge
	FuelTypeRecords *prometheus.GaugeVec
	FuelTypePrice   *prometheus.GaugeVec
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates and registers Prometheus metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelprices_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuelprices_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		DBOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelprices_db_operations_total",
				Help: "Total number of database operations by type and status",
			},
			[]string{"operation", "status"},
		),
		RecordsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fuelprices_records_stored",
				Help: "Number of price records in the store",
			},
		),
		StationsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fuelprices_stations_stored",
				Help: "Number of distinct stations in the store",
			},
		),
		FuelTypeRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fuelprices_fuel_type_records",
				Help: "Number of price records per canonical fuel type",
			},
			[]string{"fuel_type"},
		),
		FuelTypePrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fuelprices_fuel_type_price_brl",
				Help: "Minimum, maximum and average price per liter by canonical fuel type",
			},
			[]string{"fuel_type", "stat"},
		),
	}
}

// RecordHTTPRequest records an HTTP request metric.
func (m *Metrics) RecordHTTPRequest(route, method, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration)
}

// RecordDBOperation records a database operation metric.
func (m *Metrics) RecordDBOperation(operation, status string) {
	m.DBOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordReport replaces the statistics gauges with the values of r.
func (m *Metrics) RecordReport(r models.Report) {
	m.RecordsStored.Set(float64(r.TotalRecords))
	m.StationsStored.Set(float64(r.TotalStations))

	// Fuel types that disappeared must not keep stale values.
	m.FuelTypeRecords.Reset()
	m.FuelTypePrice.Reset()

	for _, s := range r.ByFuelType {
		m.FuelTypeRecords.WithLabelValues(s.FuelType).Set(float64(s.Count))
		m.FuelTypePrice.WithLabelValues(s.FuelType, "min").Set(s.Min)
		m.FuelTypePrice.WithLabelValues(s.FuelType, "max").Set(s.Max)
		m.FuelTypePrice.WithLabelValues(s.FuelType, "avg").Set(s.Avg)
	}
}
