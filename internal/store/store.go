// Package store es el dueño único del estado en memoria (projects,
// clusters, data de referencia) y del archivo JSON que lo respalda.
// Toda mutación persiste sincrónicamente: la operación no termina hasta
// que el documento completo quedó escrito en disco.
package store

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/clusterdesk/internal/domain"
	"github.com/dropDatabas3/clusterdesk/internal/metrics"
	"github.com/dropDatabas3/clusterdesk/internal/util/atomicwrite"
)

var (
	ErrClusterNotFound = errors.New("cluster not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrBadInput        = errors.New("bad input")
)

// Store implementa la persistencia sobre un documento JSON plano.
// El RWMutex serializa mutaciones: dos writes nunca se intercalan y las
// operaciones sobre un mismo id se sirven en orden de llamada.
type Store struct {
	dbPath       string
	regionsPath  string
	versionsPath string

	mu       sync.RWMutex
	db       domain.Database
	regions  []domain.Region
	versions []domain.Version

	// lastSum es el SHA-256 del último contenido que ESTE proceso
	// escribió. El watcher lo compara contra el archivo para distinguir
	// self-writes de ediciones externas sin ventanas de tiempo.
	lastSum    [sha256.Size]byte
	hasLastSum bool
}

func New(dbPath, regionsPath, versionsPath string) *Store {
	return &Store{
		dbPath:       dbPath,
		regionsPath:  regionsPath,
		versionsPath: versionsPath,
	}
}

// DBPath devuelve la ruta del documento principal (la observa el watcher).
func (s *Store) DBPath() string { return s.dbPath }

// Load lee el documento principal y los archivos de referencia.
// Falla fatal (el proceso no puede servir tráfico) si el documento
// principal falta o no parsea.
func (s *Store) Load() error {
	b, err := os.ReadFile(s.dbPath)
	if err != nil {
		return fmt.Errorf("read db file: %w", err)
	}
	var db domain.Database
	if err := json.Unmarshal(b, &db); err != nil {
		return fmt.Errorf("parse db file %s: %w", s.dbPath, err)
	}

	var regions []domain.Region
	if err := readJSON(s.regionsPath, &regions); err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	var versions []domain.Version
	if err := readJSON(s.versionsPath, &versions); err != nil {
		return fmt.Errorf("load versions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = db
	s.regions = regions
	s.versions = versions
	s.lastSum = sha256.Sum256(b)
	s.hasLastSum = true
	return nil
}

// Reload relee únicamente el documento principal. Si el archivo no
// parsea, el estado en memoria previo se retiene sin cambios y se
// devuelve el error.
func (s *Store) Reload() error {
	b, err := os.ReadFile(s.dbPath)
	if err != nil {
		return fmt.Errorf("read db file: %w", err)
	}
	return s.ReloadFrom(b)
}

// ReloadFrom instala contenido ya leído del documento principal (lo usa
// el watcher tras una edición externa: el estado instalado corresponde
// exactamente a los bytes que el watcher hasheó, sin releer un archivo
// que pudo cambiar en el medio). Con parse fallido el estado previo se
// retiene sin cambios.
func (s *Store) ReloadFrom(b []byte) error {
	var db domain.Database
	if err := json.Unmarshal(b, &db); err != nil {
		return fmt.Errorf("parse db file %s: %w", s.dbPath, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = db
	s.lastSum = sha256.Sum256(b)
	s.hasLastSum = true
	return nil
}

// MatchesLastWrite reporta si sum coincide con el último contenido que
// escribió este proceso (o que instaló un reload previo).
func (s *Store) MatchesLastWrite(sum [sha256.Size]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLastSum && s.lastSum == sum
}

// ===== Projects =====

func (s *Store) ListProjects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.db.Projects))
	copy(out, s.db.Projects)
	return out
}

func (s *Store) GetProject(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.db.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, ErrProjectNotFound
}

// ===== Clusters =====

// ListClusters devuelve snapshots (copias profundas). projectID==""
// lista todos.
func (s *Store) ListClusters(projectID string) []domain.Cluster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Cluster, 0, len(s.db.Clusters))
	for _, c := range s.db.Clusters {
		if projectID != "" && c.ProjectID != projectID {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

func (s *Store) GetCluster(id string) (domain.Cluster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.db.Clusters {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return domain.Cluster{}, ErrClusterNotFound
}

// CreateCluster asigna id y timestamps, agrega el registro y persiste.
// El status inicial lo fija el caller (siempre pending desde la API).
func (s *Store) CreateCluster(c domain.Cluster) (domain.Cluster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c.ID = "cluster-" + uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = domain.StatusPending
	}

	s.db.Clusters = append(s.db.Clusters, c.Clone())
	if err := s.persistLocked(); err != nil {
		// rollback en memoria: la mutación no se considera aplicada
		s.db.Clusters = s.db.Clusters[:len(s.db.Clusters)-1]
		return domain.Cluster{}, err
	}
	return c, nil
}

// UpdateCluster aplica un patch parcial: sólo los campos presentes
// cambian. id, projectId y createdAt son inmutables (el patch no los
// puede expresar). Bumpa updatedAt y persiste.
func (s *Store) UpdateCluster(id string, patch domain.ClusterPatch) (domain.Cluster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.db.Clusters {
		if s.db.Clusters[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Cluster{}, ErrClusterNotFound
	}

	prev := s.db.Clusters[idx].Clone()
	next := prev.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Region != nil {
		next.Region = *patch.Region
	}
	if patch.Version != nil {
		next.Version = *patch.Version
	}
	if patch.NodeCount != nil {
		n := *patch.NodeCount
		if n != math.Trunc(n) {
			return domain.Cluster{}, fmt.Errorf("%w: nodeCount must be an integer", ErrBadInput)
		}
		next.NodeCount = int(n)
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Labels != nil {
		next.Labels = make(map[string]string, len(patch.Labels))
		for k, v := range patch.Labels {
			next.Labels[k] = v
		}
	}
	next.UpdatedAt = time.Now().UTC()

	s.db.Clusters[idx] = next.Clone()
	if err := s.persistLocked(); err != nil {
		s.db.Clusters[idx] = prev
		return domain.Cluster{}, err
	}
	return next, nil
}

func (s *Store) DeleteCluster(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.db.Clusters {
		if s.db.Clusters[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrClusterNotFound
	}

	removed := s.db.Clusters[idx]
	s.db.Clusters = append(s.db.Clusters[:idx], s.db.Clusters[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		s.db.Clusters = append(s.db.Clusters, domain.Cluster{})
		copy(s.db.Clusters[idx+1:], s.db.Clusters[idx:])
		s.db.Clusters[idx] = removed
		return err
	}
	return nil
}

// ===== predicados de validación =====

// NameExists reporta si otro cluster del proyecto ya usa name.
// excludeID permite que un rename no-op pase (el propio cluster no cuenta).
func (s *Store) NameExists(projectID, name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.db.Clusters {
		if c.ProjectID == projectID && c.Name == name && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) IsValidRegion(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.regions {
		if r.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) IsValidVersion(version string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.versions {
		if v.Version == version {
			return true
		}
	}
	return false
}

// ===== data de referencia =====

func (s *Store) Regions() []domain.Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

func (s *Store) Versions() []domain.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Version, len(s.versions))
	copy(out, s.versions)
	return out
}

// ===== persistencia =====

// persistLocked serializa el documento completo y lo escribe atómico.
// Pretty-printed para que las ediciones a mano sigan siendo diffeables.
// Caller debe tener el write lock.
func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal db: %w", err)
	}
	b = append(b, '\n')
	if err := atomicwrite.AtomicWriteFile(s.dbPath, b, 0o644); err != nil {
		return fmt.Errorf("write db file: %w", err)
	}
	s.lastSum = sha256.Sum256(b)
	s.hasLastSum = true
	metrics.StoreWrites.Inc()
	return nil
}

func readJSON[T any](path string, out *T) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
