package processor

import (
	"sync/atomic"
	"time"
)

// ServiceMetrics keeps in-process counters for the periodic metrics log line.
// Prometheus gets the same numbers through prom.AddEventProcessed.
type ServiceMetrics struct {
	processed  atomic.Int64
	failed     atomic.Int64
	durationNs atomic.Int64
	startedNs  atomic.Int64
}

type MetricsSnapshot struct {
	Processed     int64
	Failed        int64
	RatePerSecond float64
	AvgDuration   time.Duration
	Uptime        time.Duration
}

func NewServiceMetrics() *ServiceMetrics {
	m := &ServiceMetrics{}
	m.startedNs.Store(time.Now().UnixNano())
	return m
}

func (m *ServiceMetrics) RecordSuccess(d time.Duration) {
	m.processed.Add(1)
	m.durationNs.Add(int64(d))
}

func (m *ServiceMetrics) RecordFailure() {
	m.failed.Add(1)
}

func (m *ServiceMetrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Processed: m.processed.Load(),
		Failed:    m.failed.Load(),
		Uptime:    time.Since(time.Unix(0, m.startedNs.Load())),
	}
	if secs := s.Uptime.Seconds(); secs > 0 {
		s.RatePerSecond = float64(s.Processed) / secs
	}
	if s.Processed > 0 {
		s.AvgDuration = time.Duration(m.durationNs.Load() / s.Processed)
	}
	return s
}
