package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status es el estado de aprovisionamiento de un cluster.
// Enum cerrado: cualquier otro valor se rechaza al deserializar.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusError   Status = "error"
)

// Valid reporta si s es uno de los estados conocidos.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusError:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// UnmarshalJSON valida la pertenencia al enum. Un archivo editado a mano
// con un status desconocido falla el parse completo (nunca se instala
// estado parcialmente corrupto).
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st := Status(raw)
	if !st.Valid() {
		return fmt.Errorf("unknown cluster status: %q", raw)
	}
	*s = st
	return nil
}

// Cluster es el registro administrado que representa un cluster de
// cómputo (simulado). id y projectId son inmutables tras la creación;
// name es único dentro del proyecto.
type Cluster struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"projectId"`
	Name      string            `json:"name"`
	Region    string            `json:"region"`
	Version   string            `json:"version"`
	NodeCount int               `json:"nodeCount"`
	Status    Status            `json:"status"`
	Labels    map[string]string `json:"labels,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Clone devuelve una copia profunda (el map de labels no se comparte).
func (c Cluster) Clone() Cluster {
	out := c
	if c.Labels != nil {
		out.Labels = make(map[string]string, len(c.Labels))
		for k, v := range c.Labels {
			out.Labels[k] = v
		}
	}
	return out
}

// Equal compara campo a campo, incluyendo labels y timestamps.
func (c Cluster) Equal(o Cluster) bool {
	if c.ID != o.ID ||
		c.ProjectID != o.ProjectID ||
		c.Name != o.Name ||
		c.Region != o.Region ||
		c.Version != o.Version ||
		c.NodeCount != o.NodeCount ||
		c.Status != o.Status ||
		!c.CreatedAt.Equal(o.CreatedAt) ||
		!c.UpdatedAt.Equal(o.UpdatedAt) {
		return false
	}
	if len(c.Labels) != len(o.Labels) {
		return false
	}
	for k, v := range c.Labels {
		if ov, ok := o.Labels[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ClusterPatch es un update parcial: sólo los campos presentes cambian.
// NodeCount se decodifica como float64 para poder distinguir "no es
// entero" de "fuera de rango" en la validación.
type ClusterPatch struct {
	Name      *string           `json:"name,omitempty"`
	Region    *string           `json:"region,omitempty"`
	Version   *string           `json:"version,omitempty"`
	NodeCount *float64          `json:"nodeCount,omitempty"`
	Status    *Status           `json:"status,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Project es un namespace de sólo lectura al que pertenecen los clusters.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Region es data de referencia, cargada una vez al inicio.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Version es data de referencia, cargada una vez al inicio.
type Version struct {
	Version       string `json:"version"`
	IsDefault     bool   `json:"isDefault"`
	SupportStatus string `json:"supportStatus"`
}

// User es una credencial del archivo de usuarios. El password se guarda
// en texto plano: sistema demo, asumido como non-goal de seguridad.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// Database es el layout del documento JSON persistido.
type Database struct {
	Projects []Project `json:"projects"`
	Clusters []Cluster `json:"clusters"`
}
