// Package simulator simula el aprovisionamiento: un timer one-shot por
// cluster que, tras un delay fijo, transiciona pending -> running por la
// misma ruta store + broadcaster que usa la API.
//
// Invariante estructural: a lo sumo un timer agendado por cluster id (el
// map es la única fuente de timers y Schedule es no-op si ya hay uno).
// El disparo se auto-protege re-chequeando existencia y status en el
// store: un timer que sobrevive a un delete o a una edición externa no
// hace nada.
package simulator

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
	"github.com/dropDatabas3/clusterdesk/internal/reconcile"
)

// Store es lo que el simulador necesita del store.
type Store interface {
	GetCluster(id string) (domain.Cluster, error)
	UpdateCluster(id string, patch domain.ClusterPatch) (domain.Cluster, error)
}

// Simulator agenda transiciones pending -> running.
type Simulator struct {
	store Store
	bc    reconcile.Broadcaster
	delay time.Duration
	log   *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func New(store Store, bc reconcile.Broadcaster, delay time.Duration) *Simulator {
	return &Simulator{
		store:  store,
		bc:     bc,
		delay:  delay,
		log:    logger.Named("simulator"),
		timers: make(map[string]*time.Timer),
	}
}

// Schedule agenda la transición para id. Un schedule duplicado para un
// id ya agendado se ignora.
func (s *Simulator) Schedule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[id]; ok {
		return
	}
	s.timers[id] = time.AfterFunc(s.delay, func() { s.fire(id) })
	s.log.Debug("provisioning scheduled", logger.ClusterID(id), logger.Duration(s.delay))
}

// Cancel desagenda el timer de id (p.ej. cluster borrado antes del
// disparo). El guard de fire cubre igualmente al callback que ya salió
// del map.
func (s *Simulator) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Stop cancela todos los timers pendientes.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Simulator) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	c, err := s.store.GetCluster(id)
	if err != nil || c.Status != domain.StatusPending {
		// borrado o ya transicionado por otra vía: no-op
		return
	}

	st := domain.StatusRunning
	updated, err := s.store.UpdateCluster(id, domain.ClusterPatch{Status: &st})
	if err != nil {
		s.log.Error("provisioning transition failed", logger.ClusterID(id), logger.Err(err))
		return
	}

	s.log.Info("cluster provisioned",
		logger.ClusterID(id),
		logger.ClusterStatus(string(updated.Status)),
	)
	s.bc.BroadcastClusterUpdated(updated)
	s.bc.BroadcastClusterStatus(id, updated.Status)
}
