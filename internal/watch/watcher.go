// Package watch observa el archivo JSON del store y dispara una pasada
// de reconciliación cuando otro proceso lo modifica.
//
// Supresión de self-writes: en vez de una ventana de tiempo (heurística
// racy: podía tragarse una edición externa legítima que cayera dentro
// de la ventana, o tratar un write interno lento como externo), el
// watcher hashea el contenido del archivo y lo compara contra el último
// contenido que el store escribió. Si coinciden, el cambio es propio y
// se ignora. Queda una carrera conocida: una edición externa que deja
// el archivo byte-idéntico a lo último escrito es indistinguible de un
// self-write, y dos modificaciones dentro del mismo debounce colapsan
// en una sola pasada (el diff sigue siendo correcto: last write
// observed wins).
package watch

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/metrics"
	"github.com/dropDatabas3/clusterdesk/internal/observability/logger"
)

// Store es lo que el watcher necesita del store.
type Store interface {
	DBPath() string
	ListClusters(projectID string) []domain.Cluster
	MatchesLastWrite(sum [sha256.Size]byte) bool
	ReloadFrom(b []byte) error
}

// Reconciler consume el par (previous, current) tras un reload.
type Reconciler interface {
	Reconcile(prev, curr []domain.Cluster)
}

// Watcher observa el directorio del archivo (no el archivo: editores y
// el propio atomic-write reemplazan por rename, y fsnotify pierde el
// watch sobre el inode viejo).
type Watcher struct {
	store    Store
	rec      Reconciler
	debounce time.Duration
	log      *zap.Logger
}

func New(store Store, rec Reconciler, debounce time.Duration) *Watcher {
	return &Watcher{
		store:    store,
		rec:      rec,
		debounce: debounce,
		log:      logger.Named("watch"),
	}
}

// Run observa hasta que ctx se cancela. Los eventos sobre el archivo se
// debouncean: ráfagas de writes (editores que escriben en chunks)
// colapsan en una sola evaluación.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dbPath := w.store.DBPath()
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		return err
	}
	base := filepath.Base(dbPath)

	w.log.Info("watching backing file", logger.File(dbPath))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logger.Err(err))

		case <-timerC:
			timer = nil
			timerC = nil
			w.evaluate(dbPath)
		}
	}
}

// evaluate decide si el cambio fue propio o externo y, en el segundo
// caso, recarga y reconcilia.
func (w *Watcher) evaluate(dbPath string) {
	b, err := os.ReadFile(dbPath)
	if err != nil {
		// archivo a mitad de reemplazo o borrado; el próximo evento
		// volverá a evaluar
		w.log.Warn("read backing file", logger.Err(err))
		metrics.WatcherReloads.WithLabelValues("error").Inc()
		return
	}

	if w.store.MatchesLastWrite(sha256.Sum256(b)) {
		w.log.Debug("self-write suppressed", logger.File(dbPath))
		metrics.WatcherReloads.WithLabelValues("self").Inc()
		return
	}

	// se instalan los mismos bytes que se hashearon: un write que caiga
	// después de la lectura genera su propio evento y otra pasada
	prev := w.store.ListClusters("")
	if err := w.store.ReloadFrom(b); err != nil {
		// parse fallido: el estado en memoria previo se retiene intacto
		w.log.Error("reload failed, keeping previous state", logger.Err(err))
		metrics.WatcherReloads.WithLabelValues("error").Inc()
		return
	}
	curr := w.store.ListClusters("")

	w.log.Info("external change detected",
		logger.File(dbPath),
		logger.Int("previous", len(prev)),
		logger.Int("current", len(curr)),
	)
	metrics.WatcherReloads.WithLabelValues("external").Inc()

	w.rec.Reconcile(prev, curr)
}
