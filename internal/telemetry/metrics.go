package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	PollCycles       = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_poll_cycles_total", Help: "Document poll cycles completed"})
	PollFailures     = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_poll_failures_total", Help: "Document fetches that failed transiently"})
	EdlPushes        = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_edl_pushes_total", Help: "EDL updates accepted by the engine"})
	EdlPushFailures  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_edl_push_failures_total", Help: "EDL updates rejected by the engine"})
	RendersEnqueued  = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_renders_enqueued_total", Help: "Render jobs accepted"})
	RendersCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_renders_completed_total", Help: "Render jobs completed successfully"})
	RendersFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "bridge_renders_failed_total", Help: "Render jobs that failed"})
	QueueDepthGauge  = prometheus.NewGauge(prometheus.GaugeOpts{Name: "bridge_render_queue_depth", Help: "Render jobs waiting for the worker"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			PollCycles,
			PollFailures,
			EdlPushes,
			EdlPushFailures,
			RendersEnqueued,
			RendersCompleted,
			RendersFailed,
			QueueDepthGauge,
		)
	})
	return promhttp.Handler()
}
