package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarhub", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scholarhub", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	BackendCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarhub", Name: "backend_calls_total", Help: "Data backend calls",
	}, []string{"table", "op", "outcome"})
	BackendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scholarhub", Name: "backend_call_duration_seconds", Help: "Data backend call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "op"})
	Upserts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarhub", Name: "upserts_total", Help: "Grade and attendance upserts",
	}, []string{"kind", "action"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, BackendCalls, BackendDuration, Upserts)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveHTTP(method, route string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveBackend records a data backend call; `err` decides the outcome label.
func ObserveBackend(table, op string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendCalls.WithLabelValues(table, op, outcome).Inc()
	BackendDuration.WithLabelValues(table, op).Observe(d.Seconds())
}

// ObserveUpsert counts an upsert that either "created" or "updated" a record.
func ObserveUpsert(kind string, created bool) {
	action := "updated"
	if created {
		action = "created"
	}
	Upserts.WithLabelValues(kind, action).Inc()
}
