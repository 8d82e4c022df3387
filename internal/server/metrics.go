// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricConnsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_connections_total",
		Help: "Connections accepted since start.",
	})

	metricConnsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provdb_connections_active",
		Help: "Sessions currently being served.",
	})

	metricConnsLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_connections_limited_total",
		Help: "Connections dropped by the accept rate limiter.",
	})

	metricRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provdb_requests_total",
		Help: "Queries handled, by command.",
	}, []string{"command"})

	metricResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provdb_responses_total",
		Help: "Response frames sent, by status code.",
	}, []string{"status"})

	metricParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_parse_errors_total",
		Help: "Queries rejected by the parser.",
	})

	metricPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_handler_panics_total",
		Help: "Handler panics recovered.",
	})

	metricBytesIn = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_bytes_read_total",
		Help: "Payload bytes received.",
	})

	metricBytesOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provdb_bytes_written_total",
		Help: "Payload bytes sent.",
	})

	metricRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provdb_records",
		Help: "Records in the store after the last write command.",
	})

	metricSessionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "provdb_session_duration_seconds",
		Help:    "Session lifetime from accept to close.",
		Buckets: []float64{0.1, 1, 5, 30, 60, 300, 600, 1800, 3600},
	})
)

func init() {
	prometheus.MustRegister(metricConnsTotal)
	prometheus.MustRegister(metricConnsActive)
	prometheus.MustRegister(metricConnsLimited)
	prometheus.MustRegister(metricRequests)
	prometheus.MustRegister(metricResponses)
	prometheus.MustRegister(metricParseErrors)
	prometheus.MustRegister(metricPanics)
	prometheus.MustRegister(metricBytesIn)
	prometheus.MustRegister(metricBytesOut)
	prometheus.MustRegister(metricRecords)
	prometheus.MustRegister(metricSessionSeconds)
}
