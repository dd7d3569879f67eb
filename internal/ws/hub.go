// Package ws implementa el canal live-update: un hub de conexiones
// websocket persistentes al que el reconciler, los handlers y el
// simulador publican eventos de clusters.
//
// Entrega best-effort, at-most-once: no hay replay para clientes que
// reconectan y un subscriptor lento se desconecta antes que bloquear la
// publicación al resto.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/metrics"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
)

// Nombres de evento en el wire (server -> client, no hay payloads
// client -> server).
const (
	EventClusterCreated = "cluster:created"
	EventClusterUpdated = "cluster:updated"
	EventClusterDeleted = "cluster:deleted"
	EventClusterStatus  = "cluster:status"
)

// Envelope es el frame JSON que viaja por el socket.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// StatusPayload es el data de un cluster:status.
type StatusPayload struct {
	ClusterID string        `json:"clusterId"`
	Status    domain.Status `json:"status"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Hub mantiene el set de subscriptores conectados. Conexión y
// desconexión son fire-and-forget; no persiste estado por subscriptor.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     logger.Named("ws"),
	}
}

// client es una conexión individual con su cola de salida buffereada.
// send nunca se cierra: la baja se señaliza cerrando done, así una
// publicación en vuelo jamás escribe sobre un canal cerrado.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Register toma posesión de la conexión: arranca las pumps de lectura y
// escritura y da de alta al subscriptor.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSSubscribers.Set(float64(n))

	h.log.Info("subscriber connected", logger.Subscribers(n))

	go c.writePump()
	go h.readPump(c)
}

// unregister da de baja al subscriptor. El chequeo de pertenencia bajo
// el lock garantiza un único closer de done aunque readPump, publish y
// Close compitan por la misma baja.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSSubscribers.Set(float64(n))

	close(c.done)
	h.log.Info("subscriber disconnected", logger.Subscribers(n))
}

// SubscriberCount devuelve la cantidad de conexiones activas.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close desconecta todos los subscriptores. Pasa por unregister para
// respetar el invariante de único closer.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
		_ = c.conn.Close()
	}
}

// publish serializa una vez y encola en cada subscriptor. Un cliente con
// la cola llena se da de baja en vez de bloquear al resto.
func (h *Hub) publish(event string, data any) {
	b, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("marshal event", logger.Event(event), logger.Err(err))
		return
	}
	metrics.BroadcastEvents.WithLabelValues(event).Inc()

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- b:
		case <-c.done:
			// ya dado de baja en paralelo; la pump está saliendo
		default:
			// subscriptor lento: cola llena, lo bajamos
			h.log.Warn("dropping slow subscriber", logger.Event(event))
			h.unregister(c)
			_ = c.conn.Close()
		}
	}
}

// ===== Broadcaster =====

func (h *Hub) BroadcastClusterCreated(c domain.Cluster) {
	h.publish(EventClusterCreated, c)
}

func (h *Hub) BroadcastClusterUpdated(c domain.Cluster) {
	h.publish(EventClusterUpdated, c)
}

func (h *Hub) BroadcastClusterDeleted(id string) {
	h.publish(EventClusterDeleted, id)
}

func (h *Hub) BroadcastClusterStatus(id string, status domain.Status) {
	h.publish(EventClusterStatus, StatusPayload{ClusterID: id, Status: status})
}

// ===== pumps =====

// readPump drena frames entrantes (el protocolo no define payloads
// client -> server) y detecta la desconexión.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
