package reconcile

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
)

// Broadcaster es lo que el reconciler necesita del canal live-update.
// Lo implementa el hub websocket; los tests usan un fake.
type Broadcaster interface {
	BroadcastClusterCreated(c domain.Cluster)
	BroadcastClusterUpdated(c domain.Cluster)
	BroadcastClusterDeleted(id string)
	BroadcastClusterStatus(id string, status domain.Status)
}

// Reconciler consume pares (previous, current) y publica un evento por
// cambio semántico. Entrega at-most-once: un subscriptor que reconecta
// no recibe replay.
type Reconciler struct {
	bc  Broadcaster
	log *zap.Logger
}

func New(bc Broadcaster) *Reconciler {
	return &Reconciler{
		bc:  bc,
		log: logger.Named("reconcile"),
	}
}

// Reconcile diffea los snapshots y publica. Con prev==curr no emite
// nada; llamarlo dos veces con el mismo par es idempotente.
func (r *Reconciler) Reconcile(prev, curr []domain.Cluster) {
	events := Diff(prev, curr)
	for _, ev := range events {
		r.publish(ev)
	}
	if len(events) > 0 {
		r.log.Info("reconciliation pass completed", logger.Count(len(events)))
	}
}

func (r *Reconciler) publish(ev Event) {
	switch ev.Kind {
	case EventCreated:
		r.bc.BroadcastClusterCreated(ev.Cluster)
	case EventUpdated:
		r.bc.BroadcastClusterUpdated(ev.Cluster)
	case EventDeleted:
		r.bc.BroadcastClusterDeleted(ev.ClusterID)
	case EventStatusChanged:
		r.bc.BroadcastClusterStatus(ev.ClusterID, ev.Status)
	}
}
