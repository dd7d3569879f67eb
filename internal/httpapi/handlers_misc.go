package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dropDatabas3/clusterdesk/internal/httpapi/apierr"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
)

// GET /api/health
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Cluster Manager API",
	})
}

// GET /api/projects
func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, a.store.ListProjects())
}

// GET /api/regions
func (a *API) handleListRegions(w http.ResponseWriter, r *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, a.store.Regions())
}

// GET /api/versions
func (a *API) handleListVersions(w http.ResponseWriter, r *http.Request) {
	apierr.WriteJSON(w, http.StatusOK, a.store.Versions())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// el CORS real lo maneja el middleware; el socket es abierto a nivel
	// transporte, igual que el canal original
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/ws upgradea la conexión y la entrega al hub.
func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.From(r.Context()).Warn("websocket upgrade failed", logger.Err(err))
		return
	}
	a.hub.Register(conn)
}
