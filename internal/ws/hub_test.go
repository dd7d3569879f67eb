package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func newHubServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func waitSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", want, hub.SubscriberCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := newHubServer(t)
	c1 := dial(t, url)
	c2 := dial(t, url)
	waitSubscribers(t, hub, 2)

	cluster := domain.Cluster{ID: "cluster-a", ProjectID: "proj-1", Name: "web-1", Status: domain.StatusPending}
	hub.BroadcastClusterCreated(cluster)

	for _, conn := range []*websocket.Conn{c1, c2} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EventClusterCreated, env.Event)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "cluster-a", data["id"])
		assert.Equal(t, "pending", data["status"])
	}
}

func TestHub_StatusEventShape(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	waitSubscribers(t, hub, 1)

	hub.BroadcastClusterStatus("cluster-a", domain.StatusRunning)

	env := readEnvelope(t, conn)
	assert.Equal(t, EventClusterStatus, env.Event)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cluster-a", data["clusterId"])
	assert.Equal(t, "running", data["status"])
}

func TestHub_DeletedEventCarriesID(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	waitSubscribers(t, hub, 1)

	hub.BroadcastClusterDeleted("cluster-gone")

	env := readEnvelope(t, conn)
	assert.Equal(t, EventClusterDeleted, env.Event)
	assert.Equal(t, "cluster-gone", env.Data)
}

func TestHub_DisconnectRemovesSubscriber(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	waitSubscribers(t, hub, 1)

	require.NoError(t, conn.Close())
	waitSubscribers(t, hub, 0)

	// publicar sin subscriptores no debe entrar en pánico
	hub.BroadcastClusterUpdated(domain.Cluster{ID: "cluster-a"})
}

func snapshotClients(hub *Hub) []*client {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	out := make([]*client, 0, len(hub.clients))
	for c := range hub.clients {
		out = append(out, c)
	}
	return out
}

// Bajas concurrentes con broadcasts en vuelo: la baja cierra done, nunca
// send, así que una publicación solapada no puede escribir sobre un
// canal cerrado.
func TestHub_DisconnectDuringBroadcastDoesNotPanic(t *testing.T) {
	hub, url := newHubServer(t)

	const n = 64
	for i := 0; i < n; i++ {
		dial(t, url)
	}
	waitSubscribers(t, hub, n)
	clients := snapshotClients(hub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.BroadcastClusterDeleted("cluster-gone")
		}
	}()

	// misma secuencia que ejecuta la pump de lectura al desconectar
	for _, c := range clients {
		hub.unregister(c)
		_ = c.conn.Close()
	}
	wg.Wait()

	waitSubscribers(t, hub, 0)

	// una baja repetida del mismo cliente es un no-op
	hub.unregister(clients[0])
}

func TestHub_CloseDuringBroadcast(t *testing.T) {
	hub, url := newHubServer(t)

	for i := 0; i < 16; i++ {
		dial(t, url)
	}
	waitSubscribers(t, hub, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.BroadcastClusterUpdated(domain.Cluster{ID: "cluster-a"})
		}
	}()

	hub.Close()
	wg.Wait()

	assert.Zero(t, hub.SubscriberCount())
	// Close repetido es seguro
	hub.Close()
}

func TestHub_EventOrderingPerSubscriber(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)
	waitSubscribers(t, hub, 1)

	hub.BroadcastClusterCreated(domain.Cluster{ID: "cluster-a", Status: domain.StatusPending})
	hub.BroadcastClusterStatus("cluster-a", domain.StatusRunning)

	assert.Equal(t, EventClusterCreated, readEnvelope(t, conn).Event)
	assert.Equal(t, EventClusterStatus, readEnvelope(t, conn).Event)
}
