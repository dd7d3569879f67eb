package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/clusterdesk/internal/httpapi/apierr"
	mw "github.com/dropDatabas3/clusterdesk/internal/httpapi/middlewares"
)

// Router arma el árbol de rutas con el chain de middlewares base.
// Auth por bearer token en todo menos login/logout, health, data de
// referencia, el endpoint websocket y /metrics.
func (a *API) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithCORS(corsOrigins))
	r.Use(mw.WithMetrics(chiRoutePattern))
	r.Use(mw.WithLogging())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierr.WriteError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apierr.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// públicos
	r.Get("/api/health", a.handleHealth)
	r.Post("/api/auth/login", a.handleLogin)
	r.Post("/api/auth/logout", a.handleLogout)
	r.Get("/api/regions", a.handleListRegions)
	r.Get("/api/versions", a.handleListVersions)
	r.Get("/api/ws", a.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	// protegidos
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth(a.auth))

		r.Get("/api/projects", a.handleListProjects)
		r.Get("/api/projects/{projectID}/clusters", a.handleListClusters)
		r.Post("/api/projects/{projectID}/clusters", a.handleCreateCluster)
		r.Put("/api/clusters/{clusterID}", a.handleUpdateCluster)
		r.Delete("/api/clusters/{clusterID}", a.handleDeleteCluster)
	})

	return r
}

func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
