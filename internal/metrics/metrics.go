package metrics

/*
portclean — trims domain:port lists down to the ports that matter
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry          = prometheus.NewRegistry()
	defaultRegisterer = promauto.With(registry)
	metricsEnabled    bool
)

// Metrics contains all the Prometheus metrics for a cleaning run.
type Metrics struct {
	LinesRead      prometheus.Counter
	MalformedLines prometheus.Counter
	EntriesParsed  prometheus.Counter
	Domains        prometheus.Counter
	DomainsTrimmed prometheus.Counter
	EntriesWritten prometheus.Counter

	RunsFailed  prometheus.Counter
	RunDuration prometheus.Histogram
	LastSuccess prometheus.Gauge
}

// RunStats is the subset of a run's results that gets exported.
type RunStats struct {
	LinesRead      int64
	MalformedLines int64
	EntriesParsed  int64
	Domains        int64
	DomainsTrimmed int64
	EntriesWritten int64
}

var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

// EnableMetrics enables metrics collection
func EnableMetrics() {
	metricsEnabled = true
}

// IsMetricsEnabled returns whether metrics collection is enabled
func IsMetricsEnabled() bool {
	return metricsEnabled
}

func newMetrics() *Metrics {
	buckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	return &Metrics{
		LinesRead: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_lines_read_total",
			Help: "Total number of input lines read",
		}),
		MalformedLines: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_malformed_lines_total",
			Help: "Total number of input lines skipped for lacking a ':' separator",
		}),
		EntriesParsed: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_entries_parsed_total",
			Help: "Total number of domain:port entries parsed",
		}),
		Domains: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_domains_total",
			Help: "Total number of distinct domains seen",
		}),
		DomainsTrimmed: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_domains_trimmed_total",
			Help: "Total number of domains reduced to ports 80 and 443",
		}),
		EntriesWritten: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_entries_written_total",
			Help: "Total number of domain:port entries written",
		}),
		RunsFailed: defaultRegisterer.NewCounter(prometheus.CounterOpts{
			Name: "portclean_runs_failed_total",
			Help: "Total number of runs that ended in an error",
		}),
		RunDuration: defaultRegisterer.NewHistogram(prometheus.HistogramOpts{
			Name:    "portclean_run_duration_seconds",
			Help:    "Time spent on a full read, filter and replace pass",
			Buckets: buckets,
		}),
		LastSuccess: defaultRegisterer.NewGauge(prometheus.GaugeOpts{
			Name: "portclean_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// RecordRun adds the counters of a successful run.
func (m *Metrics) RecordRun(stats RunStats, duration time.Duration) {
	if !metricsEnabled {
		return
	}

	m.LinesRead.Add(float64(stats.LinesRead))
	m.MalformedLines.Add(float64(stats.MalformedLines))
	m.EntriesParsed.Add(float64(stats.EntriesParsed))
	m.Domains.Add(float64(stats.Domains))
	m.DomainsTrimmed.Add(float64(stats.DomainsTrimmed))
	m.EntriesWritten.Add(float64(stats.EntriesWritten))
	m.RunDuration.Observe(duration.Seconds())
	m.LastSuccess.SetToCurrentTime()
}

// RecordFailure counts a run that returned an error.
func (m *Metrics) RecordFailure(duration time.Duration) {
	if !metricsEnabled {
		return
	}

	m.RunsFailed.Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// MeasureDuration returns a func reporting the time elapsed since the call.
func MeasureDuration() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if !metricsEnabled {
		return nil
	}
	GetMetrics()
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
