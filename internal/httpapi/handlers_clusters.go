package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/httpapi/apierr"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
	"github.com/dropDatabas3/clusterdesk/internal/store"
)

// GET /api/projects/{projectID}/clusters
func (a *API) handleListClusters(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	apierr.WriteJSON(w, http.StatusOK, a.store.ListClusters(projectID))
}

// POST /api/projects/{projectID}/clusters
func (a *API) handleCreateCluster(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	if _, err := a.store.GetProject(projectID); err != nil {
		apierr.WriteError(w, http.StatusNotFound, "Project not found")
		return
	}

	var patch domain.ClusterPatch
	if !apierr.ReadJSON(w, r, &patch) {
		return
	}

	if errs := a.validator.Validate(patch, projectID, false, ""); len(errs) > 0 {
		apierr.WriteValidation(w, errs)
		return
	}

	// la validación de create garantiza los campos requeridos
	c := domain.Cluster{
		ProjectID: projectID,
		Name:      *patch.Name,
		Region:    *patch.Region,
		Version:   *patch.Version,
		NodeCount: int(*patch.NodeCount),
		Status:    domain.StatusPending,
		Labels:    patch.Labels,
	}

	created, err := a.store.CreateCluster(c)
	if err != nil {
		logger.From(r.Context()).Error("create cluster failed", logger.Err(err))
		apierr.WriteError(w, http.StatusInternalServerError, "Failed to create cluster")
		return
	}

	logger.From(r.Context()).Info("cluster created",
		logger.ClusterID(created.ID),
		logger.ProjectID(projectID),
	)

	a.bc.BroadcastClusterCreated(created)
	a.sim.Schedule(created.ID)
	apierr.WriteJSON(w, http.StatusCreated, created)
}

// PUT /api/clusters/{clusterID}
func (a *API) handleUpdateCluster(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterID")

	existing, err := a.store.GetCluster(clusterID)
	if err != nil {
		apierr.WriteError(w, http.StatusNotFound, "Cluster not found")
		return
	}

	var patch domain.ClusterPatch
	if !apierr.ReadJSON(w, r, &patch) {
		return
	}

	if errs := a.validator.Validate(patch, existing.ProjectID, true, clusterID); len(errs) > 0 {
		apierr.WriteValidation(w, errs)
		return
	}

	updated, err := a.store.UpdateCluster(clusterID, patch)
	if err != nil {
		if errors.Is(err, store.ErrClusterNotFound) {
			apierr.WriteError(w, http.StatusNotFound, "Cluster not found")
			return
		}
		logger.From(r.Context()).Error("update cluster failed", logger.Err(err))
		apierr.WriteError(w, http.StatusInternalServerError, "Failed to update cluster")
		return
	}

	a.bc.BroadcastClusterUpdated(updated)
	if existing.Status != updated.Status {
		a.bc.BroadcastClusterStatus(updated.ID, updated.Status)
	}
	apierr.WriteJSON(w, http.StatusOK, updated)
}

// DELETE /api/clusters/{clusterID}
func (a *API) handleDeleteCluster(w http.ResponseWriter, r *http.Request) {
	clusterID := chi.URLParam(r, "clusterID")

	if err := a.store.DeleteCluster(clusterID); err != nil {
		if errors.Is(err, store.ErrClusterNotFound) {
			apierr.WriteError(w, http.StatusNotFound, "Cluster not found")
			return
		}
		logger.From(r.Context()).Error("delete cluster failed", logger.Err(err))
		apierr.WriteError(w, http.StatusInternalServerError, "Failed to delete cluster")
		return
	}

	logger.From(r.Context()).Info("cluster deleted", logger.ClusterID(clusterID))

	a.sim.Cancel(clusterID)
	a.bc.BroadcastClusterDeleted(clusterID)
	w.WriteHeader(http.StatusNoContent)
}
