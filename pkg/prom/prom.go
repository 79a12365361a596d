package prom

import (
	"sync"

	xhttp "github.com/pura-ai/call-tracker/pkg/http"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemCalls    = "calls"
	SystemSessions = "sessions"
	SystemEvents   = "events"
)

const (
	MetricCallsCreated           = "created_total"
	MetricCallStatusUpdates      = "status_updates_total"
	MetricCallsArchived          = "archived_total"
	MetricLogins                 = "logins_total"
	MetricEventsProcessed        = "processed_total"
	MetricEventProcessingSeconds = "processing_duration_seconds"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemCalls, MetricCallsCreated, []string{"outcome"}))
	hasError(createCounterVec(SystemCalls, MetricCallStatusUpdates, []string{"status"}))
	hasError(createCounter(SystemCalls, MetricCallsArchived))
	hasError(createCounterVec(SystemSessions, MetricLogins, []string{"role"}))
	hasError(createCounterVec(SystemEvents, MetricEventsProcessed, []string{"type", "result"}))
	hasError(createHistogramVec(SystemEvents, MetricEventProcessingSeconds, []string{"type"}))

	return err
}

func ListenAndServer(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

// AddCallCreated counts a create request; outcome is "inserted" or "reattempted".
func AddCallCreated(outcome string) {
	IncCounterVec(SystemCalls, MetricCallsCreated, outcome)
}

func AddCallStatusUpdate(status string) {
	IncCounterVec(SystemCalls, MetricCallStatusUpdates, status)
}

func AddCallsArchived(n int64) {
	AddCounter(SystemCalls, MetricCallsArchived, float64(n))
}

func AddLogin(role string) {
	IncCounterVec(SystemSessions, MetricLogins, role)
}

func AddEventProcessed(eventType, result string, seconds float64) {
	IncCounterVec(SystemEvents, MetricEventsProcessed, eventType, result)
	AddHistogramVec(SystemEvents, MetricEventProcessingSeconds, seconds, eventType)
}
