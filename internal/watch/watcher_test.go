package watch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/store"
)

type capturingReconciler struct {
	mu    sync.Mutex
	calls [][2][]domain.Cluster
	done  chan struct{}
}

func newCapturingReconciler() *capturingReconciler {
	return &capturingReconciler{done: make(chan struct{}, 8)}
}

func (c *capturingReconciler) Reconcile(prev, curr []domain.Cluster) {
	c.mu.Lock()
	c.calls = append(c.calls, [2][]domain.Cluster{prev, curr})
	c.mu.Unlock()
	c.done <- struct{}{}
}

func (c *capturingReconciler) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reconciliation")
	}
}

func seedStore(t *testing.T, clusters []domain.Cluster) *store.Store {
	t.Helper()
	dir := t.TempDir()

	db := domain.Database{
		Projects: []domain.Project{{ID: "proj-1", Name: "Web"}},
		Clusters: clusters,
	}
	writeFile(t, filepath.Join(dir, "db.json"), db)
	writeFile(t, filepath.Join(dir, "regions.json"), []domain.Region{{ID: "r1", Name: "US East", Code: "us-east-1"}})
	writeFile(t, filepath.Join(dir, "versions.json"), []domain.Version{{Version: "1.28.0", IsDefault: true}})

	s := store.New(
		filepath.Join(dir, "db.json"),
		filepath.Join(dir, "regions.json"),
		filepath.Join(dir, "versions.json"),
	)
	require.NoError(t, s.Load())
	return s
}

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func baseClusters() []domain.Cluster {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Cluster{{
		ID: "cluster-a", ProjectID: "proj-1", Name: "web-1",
		Region: "us-east-1", Version: "1.28.0", NodeCount: 3,
		Status: domain.StatusRunning, CreatedAt: now, UpdatedAt: now,
	}}
}

func startWatcher(t *testing.T, s *store.Store, rec Reconciler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w := New(s, rec, 50*time.Millisecond)
	go func() { _ = w.Run(ctx) }()
	// darle tiempo al watch de instalarse antes de tocar el archivo
	time.Sleep(150 * time.Millisecond)
}

func TestWatcher_ExternalEditTriggersReconcile(t *testing.T) {
	s := seedStore(t, baseClusters())
	rec := newCapturingReconciler()
	startWatcher(t, s, rec)

	// edición externa: el cluster desaparece del archivo
	writeFile(t, s.DBPath(), domain.Database{
		Projects: []domain.Project{{ID: "proj-1", Name: "Web"}},
		Clusters: []domain.Cluster{},
	})

	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 1)
	prev, curr := rec.calls[0][0], rec.calls[0][1]
	assert.Len(t, prev, 1)
	assert.Empty(t, curr)

	// el estado en memoria refleja el archivo
	assert.Empty(t, s.ListClusters(""))
}

func TestWatcher_SelfWriteSuppressed(t *testing.T) {
	s := seedStore(t, baseClusters())
	rec := newCapturingReconciler()
	startWatcher(t, s, rec)

	// mutación por el propio store: el hash del archivo coincide con el
	// último write y la pasada se suprime
	n := float64(9)
	_, err := s.UpdateCluster("cluster-a", domain.ClusterPatch{NodeCount: &n})
	require.NoError(t, err)

	select {
	case <-rec.done:
		t.Fatal("self-write must not trigger reconciliation")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_CorruptFileKeepsState(t *testing.T) {
	s := seedStore(t, baseClusters())
	rec := newCapturingReconciler()
	startWatcher(t, s, rec)

	require.NoError(t, os.WriteFile(s.DBPath(), []byte("{broken"), 0o644))

	select {
	case <-rec.done:
		t.Fatal("corrupt file must not reconcile")
	case <-time.After(400 * time.Millisecond):
	}
	// estado previo intacto
	assert.Len(t, s.ListClusters(""), 1)
}

func TestWatcher_ExternalEditAfterSelfWrite(t *testing.T) {
	s := seedStore(t, baseClusters())
	rec := newCapturingReconciler()
	startWatcher(t, s, rec)

	n := float64(5)
	_, err := s.UpdateCluster("cluster-a", domain.ClusterPatch{NodeCount: &n})
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	// un cambio externo posterior sí dispara: el hash ya no coincide
	clusters := s.ListClusters("")
	clusters[0].Status = domain.StatusError
	writeFile(t, s.DBPath(), domain.Database{
		Projects: []domain.Project{{ID: "proj-1", Name: "Web"}},
		Clusters: clusters,
	})

	rec.wait(t)
	got, err := s.GetCluster("cluster-a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, got.Status)
}
