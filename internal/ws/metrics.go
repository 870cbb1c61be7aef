package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	metricOnlineConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_online_conns",
		Help: "Current live websocket connections.",
	})
	metricPublishOK = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_publish_ok_total",
		Help: "Total events queued to at least one connection.",
	})
	metricPublishOffline = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_publish_offline_total",
		Help: "Total events dropped because the target had no connection.",
	})
	metricBackpressure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_backpressure_total",
		Help: "Total slow clients closed because their send buffer filled.",
	})
)

// RegisterMetrics registers hub metrics on the default registry. Call
// once per process.
func RegisterMetrics() {
	prometheus.MustRegister(
		metricOnlineConns,
		metricPublishOK, metricPublishOffline, metricBackpressure,
	)
}
