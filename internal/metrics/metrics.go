// Package metrics mirrors the poller's plain-Go Health struct as
// Prometheus gauges, served over the /metrics endpoint named in
// SPEC_FULL.md §4.9. It never reads the store or the RPC client
// directly; it only republishes what internal/poller already computed.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/base-indexer/baseindexer/internal/poller"
)

const namespace = "baseindexer"

const shutdownGrace = 5 * time.Second

// Registry owns the gauges backing the /metrics endpoint.
type Registry struct {
	lastProcessedBlock prometheus.Gauge
	blocksProcessed    prometheus.Gauge
	blocksBehind       prometheus.Gauge
	catchingUp         prometheus.Gauge
	errorCount         prometheus.Gauge
	uptimeSeconds      prometheus.Gauge
	blocksPerSec       prometheus.Gauge
}

// New registers the gauges with the default Prometheus registerer. Each
// process owns exactly one Registry, matching the single-worker poller it
// mirrors; a second call in the same process panics on duplicate
// registration.
func New() *Registry {
	reg := &Registry{
		lastProcessedBlock: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_processed_block",
			Help: "Highest block number the poller has committed.",
		}),
		blocksProcessed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "blocks_processed_total",
			Help: "Count of blocks committed since process start.",
		}),
		blocksBehind: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "blocks_behind",
			Help: "Blocks remaining before the poller catches up to the safety-buffered head.",
		}),
		catchingUp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "catching_up",
			Help: "1 when the poller is in the catch-up pseudostate, 0 otherwise.",
		}),
		errorCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "error_count_total",
			Help: "Count of recoverable errors (transient RPC failures, reorg probe failures) observed.",
		}),
		uptimeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "uptime_seconds",
			Help: "Seconds since the poller loop started.",
		}),
		blocksPerSec: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "blocks_per_second",
			Help: "Blocks committed per second of uptime.",
		}),
	}
	return reg
}

// Update republishes a Health snapshot onto the gauges. Called from the
// same poll loop as HealthSnapshot, so the two views never drift apart
// by more than one tick.
func (r *Registry) Update(h poller.Health) {
	r.lastProcessedBlock.Set(float64(h.LastProcessedBlock))
	r.blocksProcessed.Set(float64(h.BlocksProcessed))
	r.blocksBehind.Set(float64(h.BlocksBehind))
	if h.CatchingUp {
		r.catchingUp.Set(1)
	} else {
		r.catchingUp.Set(0)
	}
	r.errorCount.Set(float64(h.ErrorCount))
	r.uptimeSeconds.Set(h.UptimeSeconds)
	r.blocksPerSec.Set(h.BlocksPerSec)
}

// Handler returns the http.Handler to mount at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs an HTTP server bound to addr exposing /metrics until ctx
// is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
