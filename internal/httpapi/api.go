// Package httpapi es la capa REST: handlers finos que validan forma,
// llaman mutaciones del store y notifican al broadcaster para los
// cambios originados en la API (la ruta del watcher converge en el
// mismo broadcaster para los cambios externos).
package httpapi

import (
	"github.com/dropDatabas3/clusterdesk/internal/auth"
	"github.com/dropDatabas3/clusterdesk/internal/reconcile"
	"github.com/dropDatabas3/clusterdesk/internal/simulator"
	"github.com/dropDatabas3/clusterdesk/internal/store"
	"github.com/dropDatabas3/clusterdesk/internal/validation"
	"github.com/dropDatabas3/clusterdesk/internal/ws"
)

// API agrupa las dependencias de los handlers.
type API struct {
	store     *store.Store
	validator *validation.ClusterValidator
	auth      *auth.Service
	hub       *ws.Hub
	bc        reconcile.Broadcaster
	sim       *simulator.Simulator
}

func NewAPI(st *store.Store, authSvc *auth.Service, hub *ws.Hub, sim *simulator.Simulator) *API {
	return &API{
		store:     st,
		validator: validation.NewClusterValidator(st),
		auth:      authSvc,
		hub:       hub,
		bc:        hub,
		sim:       sim,
	}
}
