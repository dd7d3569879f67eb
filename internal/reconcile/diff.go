// Package reconcile computa el diff entre dos snapshots del set de
// clusters y lo traduce a eventos semánticos para el canal live-update.
// Es el punto de convergencia de las dos rutas de mutación: la API
// notifica directo, el watcher notifica tras detectar una edición
// externa del archivo.
package reconcile

import "github.com/dropDatabas3/clusterdesk/internal/domain"

// EventKind es el tipo semántico de un cambio.
type EventKind string

const (
	EventCreated       EventKind = "created"
	EventUpdated       EventKind = "updated"
	EventDeleted       EventKind = "deleted"
	EventStatusChanged EventKind = "status-changed"
)

// Event es un cambio semántico entre dos snapshots.
// Cluster está poblado para created/updated; ClusterID y Status para
// deleted/status-changed.
type Event struct {
	Kind      EventKind
	Cluster   domain.Cluster
	ClusterID string
	Status    domain.Status
}

// Diff compara dos snapshots completos (por valor) e indexa por id:
//
//  1. id en curr y no en prev            => created
//  2. id en ambos con registro distinto  => updated
//     (si además cambió status, un segundo evento status-changed)
//  3. id en prev y no en curr            => deleted
//
// El orden de emisión es created, updated, deleted dentro de una pasada.
// Para mantener el resultado determinístico dentro de cada grupo se
// respeta el orden de aparición en el snapshot correspondiente.
// Diff(S, S) devuelve vacío.
func Diff(prev, curr []domain.Cluster) []Event {
	prevByID := make(map[string]domain.Cluster, len(prev))
	for _, c := range prev {
		prevByID[c.ID] = c
	}
	currByID := make(map[string]domain.Cluster, len(curr))
	for _, c := range curr {
		currByID[c.ID] = c
	}

	var created, updated []Event
	for _, c := range curr {
		old, ok := prevByID[c.ID]
		if !ok {
			created = append(created, Event{Kind: EventCreated, Cluster: c.Clone(), ClusterID: c.ID})
			continue
		}
		if !old.Equal(c) {
			updated = append(updated, Event{Kind: EventUpdated, Cluster: c.Clone(), ClusterID: c.ID})
			if old.Status != c.Status {
				updated = append(updated, Event{Kind: EventStatusChanged, ClusterID: c.ID, Status: c.Status})
			}
		}
	}

	var deleted []Event
	for _, c := range prev {
		if _, ok := currByID[c.ID]; !ok {
			deleted = append(deleted, Event{Kind: EventDeleted, ClusterID: c.ID})
		}
	}

	out := make([]Event, 0, len(created)+len(updated)+len(deleted))
	out = append(out, created...)
	out = append(out, updated...)
	out = append(out, deleted...)
	return out
}
