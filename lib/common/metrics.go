package common

import (
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Process wide counters of the engine, exposed in Prometheus text format by WriteMetrics
var (
	SessionsOpened   = metrics.GetOrCreateCounter("gedis_sessions_opened_total")
	SessionsClosed   = metrics.GetOrCreateCounter("gedis_sessions_closed_total")
	CommandsTotal    = metrics.GetOrCreateCounter("gedis_commands_total")
	CommandErrors    = metrics.GetOrCreateCounter("gedis_command_errors_total")
	FanOutNodes      = metrics.GetOrCreateCounter("gedis_fanout_nodes_total")
	AuditEvictions   = metrics.GetOrCreateCounter("gedis_audit_evictions_total")
	commandDurations = metrics.GetOrCreateHistogram("gedis_command_duration_seconds")
)

// ObserveCommand records one executed command (or pipeline) started at start
func ObserveCommand(start time.Time, count int, err error) {
	CommandsTotal.Add(count)
	if err != nil {
		CommandErrors.Inc()
	}
	commandDurations.UpdateDuration(start)
}

// WriteMetrics writes all engine metrics in Prometheus text format
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
