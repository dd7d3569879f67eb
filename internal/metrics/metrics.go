package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Core Prometheus metrics. Defined in a standalone package to avoid
// import cycles between the store/reconciler and HTTP packages.

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "route", "status"})

	WSSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_subscribers",
		Help: "Subscriptores websocket conectados",
	})

	BroadcastEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcast_events_total",
		Help: "Eventos publicados al canal live-update, por tipo",
	}, []string{"kind"})

	StoreWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_writes_total",
		Help: "Escrituras sincrónicas del store al archivo JSON",
	})

	WatcherReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watcher_reloads_total",
		Help: "Recargas del watcher por resultado (external, self, error)",
	}, []string{"result"})
)

// Register registers the metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequests,
		WSSubscribers,
		BroadcastEvents,
		StoreWrites,
		WatcherReloads,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
